package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/middleware"
)

// switchRoute persists the new route and optionally announces it.
func (h *Handler) switchRoute(ctx context.Context, b *bot.Bot, chatID int64, route domain.Route, announce string) {
	if err := h.states.SetRoute(ctx, chatID, route); err != nil {
		slog.Error("set route", "error", err, "chat_id", chatID)
	}
	if announce != "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        announce,
			ReplyMarkup: mainKeyboard(),
		})
	}
}

func (h *Handler) handleDiagnoseCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.switchRoute(ctx, b, update.Message.Chat.ID, domain.RouteDiagnose,
		"🌿 Diagnose mode. Send me a photo of the leaf you're worried about.")
}

func (h *Handler) handleChatCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	chatID := update.Message.Chat.ID
	rt := h.runtime(ctx, chatID)

	text := "💬 Plant care chat. Ask me anything — watering, soil, pests — or send a photo with your question."
	if n := len(rt.session.Messages()); n > 0 {
		text += "\n\nPicked up your previous conversation. /new starts a fresh one."
	}
	h.switchRoute(ctx, b, chatID, domain.RouteChat, text)
}

// HandleText routes non-command text by the chat's current view. Registered
// as the default text handler.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	// Reply keyboard presses double as route switches.
	switch msg.Text {
	case LabelDiagnose:
		h.handleDiagnoseCommand(ctx, b, update)
		return
	case LabelChat:
		h.handleChatCommand(ctx, b, update)
		return
	case LabelHistory:
		h.handleHistory(ctx, b, update)
		return
	}

	switch middleware.GetRoute(ctx) {
	case domain.RouteChat:
		h.sendChatMessage(ctx, b, chatID, msg.Text)
	case domain.RouteHistory:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📋 Use /history to refresh the list, or switch to chat to ask a question.",
		})
	default:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🌿 Send me a leaf photo to diagnose, or switch to 💬 chat to ask a question.",
		})
	}
}

// HandlePhoto routes an incoming photo by the chat's current view.
// Registered from the default handler for photo messages.
func (h *Handler) HandlePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	switch middleware.GetRoute(ctx) {
	case domain.RouteChat:
		h.handleChatPhoto(ctx, b, update)
	default:
		h.handleDiagnosePhoto(ctx, b, update)
	}
}
