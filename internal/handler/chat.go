package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/config"
	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/media"
	tg "github.com/leafwise/leafwise/internal/telegram"
)

// sendChatMessage stages text in the session composer and delivers it along
// with any pending attachment.
func (h *Handler) sendChatMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	rt := h.runtime(ctx, chatID)
	rt.session.SetComposerText(text)

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	reply, err := rt.session.Send(reqCtx)
	switch {
	case errors.Is(err, domain.ErrAwaitingReply):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Wait for the reply to your previous message first.",
		})
		return
	case errors.Is(err, domain.ErrEmptyMessage):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "✏️ Type a question, or attach a photo to go with it.",
		})
		return
	case err != nil:
		slog.Error("chat send", "error", err, "chat_id", chatID, "session_id", rt.session.ID())
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't reach the plant care assistant. Your message was kept — try again in a moment.",
		})
		return
	}

	tg.SendLongMessage(ctx, b, chatID, reply.Message)
}

// handleChatPhoto attaches an incoming photo to the conversation. A caption
// sends immediately; a bare photo waits for the user's question.
func (h *Handler) handleChatPhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	rt := h.runtime(ctx, chatID)

	cand, err := h.downloadCandidate(ctx, b, msg)
	if err != nil {
		slog.Error("download photo", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't fetch that photo from Telegram. Please try again.",
		})
		return
	}

	_, err = rt.session.AttachImage(ctx, *cand)
	switch {
	case errors.Is(err, media.ErrSuperseded):
		return
	case errors.Is(err, domain.ErrInvalidMediaType):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ That doesn't look like an image.",
		})
		return
	case err != nil:
		slog.Error("attach image", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't read that image. Please try another photo.",
		})
		return
	}

	if msg.Caption != "" {
		h.sendChatMessage(ctx, b, chatID, msg.Caption)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📎 Photo attached. Type your question, or /send to have it analyzed as is.",
	})
}

// handleSendCommand delivers a pending attachment without any text; the
// session substitutes its placeholder question.
func (h *Handler) handleSendCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendChatMessage(ctx, b, update.Message.Chat.ID, "")
}

func (h *Handler) handleNewSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	chatID := update.Message.Chat.ID

	h.resetSession(ctx, chatID)
	h.switchRoute(ctx, b, chatID, domain.RouteChat,
		"🆕 Fresh conversation started. What would you like to know?")
}
