package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/config"
	"github.com/leafwise/leafwise/internal/domain"
	tg "github.com/leafwise/leafwise/internal/telegram"
)

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	chatID := update.Message.Chat.ID
	rt := h.runtime(ctx, chatID)

	h.switchRoute(ctx, b, chatID, domain.RouteHistory, "")

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	entries, err := rt.history.Load(reqCtx)
	if err != nil {
		slog.Error("load history", "error", err, "chat_id", chatID)
		text := "❌ Couldn't load your history right now."
		if rt.history.Loaded() {
			// Stale-but-complete beats empty; show what we have.
			text += " Showing the last loaded list.\n\n" + formatHistory(entries)
		}
		tg.SendLongMessage(ctx, b, chatID, text)
		return
	}

	if len(entries) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📋 No diagnoses yet. Send a leaf photo in 🌿 Diagnose mode to get started.",
		})
		return
	}

	tg.SendLongMessage(ctx, b, chatID, "📋 *Your past diagnoses:*\n\n"+formatHistory(entries))
}

// formatHistory renders entries in service order, most recent first as the
// service returns them.
func formatHistory(entries []domain.HistoryEntry) string {
	var sb strings.Builder
	shown := entries
	if len(shown) > config.HistoryPageSize {
		shown = shown[:config.HistoryPageSize]
	}
	for _, e := range shown {
		icon := "🦠"
		if e.Healthy() {
			icon = "✅"
		}
		fmt.Fprintf(&sb, "%s *%s* — %d%%\n_%s_\n\n",
			icon, e.DiseaseName, e.Confidence, e.Timestamp.Format("Jan 2, 2006 15:04"))
	}
	if len(entries) > len(shown) {
		fmt.Fprintf(&sb, "…and %d more.", len(entries)-len(shown))
	}
	return strings.TrimRight(sb.String(), "\n")
}
