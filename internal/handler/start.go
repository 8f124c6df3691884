package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/domain"
	tg "github.com/leafwise/leafwise/internal/telegram"
)

// Reply keyboard labels for the three views.
const (
	LabelDiagnose = "🌿 Diagnose"
	LabelChat     = "💬 Plant Care Chat"
	LabelHistory  = "📋 History"
)

func mainKeyboard() *models.ReplyKeyboardMarkup {
	return tg.ReplyKeyboard(
		[]string{LabelDiagnose, LabelChat},
		[]string{LabelHistory},
	)
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	chatID := update.Message.Chat.ID

	text := "🌱 *Welcome to Leafwise!*\n\n" +
		"Send me a photo of a plant leaf and I'll diagnose it for you.\n\n" +
		"• 🌿 Diagnose — submit a leaf photo for analysis\n" +
		"• 💬 Plant Care Chat — ask anything about plant care\n" +
		"• 📋 History — your past diagnoses"

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: mainKeyboard(),
	})

	h.switchRoute(ctx, b, chatID, domain.RouteDiagnose, "")
}
