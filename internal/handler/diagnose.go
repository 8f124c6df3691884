package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/config"
	"github.com/leafwise/leafwise/internal/diagnosis"
	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/media"
	tg "github.com/leafwise/leafwise/internal/telegram"
)

func analyzeKeyboard() *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(tg.ButtonRow(
		tg.InlineButton("🔬 Analyze", "diag_submit"),
		tg.InlineButton("🔄 Start over", "diag_reset"),
	))
}

// handleDiagnosePhoto stores an incoming leaf photo as the current selection
// and offers the analyze affordance.
func (h *Handler) handleDiagnosePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	_, err = rt.diagnosis.SelectImage(ctx, *cand)
	switch {
	case errors.Is(err, domain.ErrRequestInFlight):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Still analyzing your previous photo. One at a time.",
		})
		return
	case errors.Is(err, media.ErrSuperseded):
		// A newer photo replaced this one mid-encode; nothing to announce.
		return
	case errors.Is(err, domain.ErrInvalidMediaType):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ That doesn't look like an image. Send a photo of the leaf.",
		})
		return
	case err != nil:
		slog.Error("select image", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't read that image. Please try another photo.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "📷 Got it. Ready to analyze this leaf?",
		ReplyMarkup: analyzeKeyboard(),
	})
}

func (h *Handler) handleDiagnoseSubmit(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})
	if cb.Message.Message == nil {
		return
	}
	chatID := cb.Message.Message.Chat.ID
	rt := h.runtime(ctx, chatID)

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	pred, err := rt.diagnosis.Submit(reqCtx)
	switch {
	case errors.Is(err, domain.ErrRequestInFlight):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Already analyzing — hold on.",
		})
		return
	case errors.Is(err, domain.ErrNoImageSelected):
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🌿 Send me a leaf photo first.",
		})
		return
	case errors.Is(err, diagnosis.ErrSuperseded):
		return
	case err != nil:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "❌ " + rt.diagnosis.FailureMessage() + "\n\nYour photo is kept — tap Analyze to retry.",
			ReplyMarkup: analyzeKeyboard(),
		})
		return
	}

	tg.SendLongMessage(ctx, b, chatID, formatPrediction(pred))
}

func (h *Handler) handleDiagnoseReset(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})
	if cb.Message.Message == nil {
		return
	}
	h.resetDiagnosis(ctx, b, cb.Message.Message.Chat.ID)
}

func (h *Handler) handleReset(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.resetDiagnosis(ctx, b, update.Message.Chat.ID)
}

func (h *Handler) resetDiagnosis(ctx context.Context, b *bot.Bot, chatID int64) {
	rt := h.runtime(ctx, chatID)
	rt.diagnosis.Reset()
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🔄 Cleared. Send a new leaf photo whenever you're ready.",
	})
}

// downloadCandidate pulls the best-resolution photo (or an attached image
// document) from a message and wraps it for the encoder.
func (h *Handler) downloadCandidate(ctx context.Context, b *bot.Bot, msg *models.Message) (*media.Candidate, error) {
	var fileID string
	declaredMIME := ""

	switch {
	case len(msg.Photo) > 0:
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Document != nil:
		fileID = msg.Document.FileID
		declaredMIME = msg.Document.MimeType
	default:
		return nil, fmt.Errorf("message carries no file")
	}

	data, path, guessedMIME, err := tg.DownloadFile(ctx, b, fileID)
	if err != nil {
		return nil, err
	}
	mimeType := declaredMIME
	if mimeType == "" {
		mimeType = guessedMIME
	}
	return &media.Candidate{
		Name:     path,
		MIMEType: mimeType,
		Reader:   bytes.NewReader(data),
	}, nil
}

func formatPrediction(p *domain.Prediction) string {
	var sb strings.Builder

	icon := "🦠"
	if p.Healthy() {
		icon = "✅"
	}
	fmt.Fprintf(&sb, "%s *%s* — %d%% confidence\n\n", icon, p.DiseaseName, p.Confidence)
	sb.WriteString(p.Description)

	if len(p.Treatments) > 0 {
		sb.WriteString("\n\n*Treatment:*\n")
		for i, t := range p.Treatments {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
		}
	}
	if len(p.PreventionTips) > 0 {
		sb.WriteString("\n*Prevention:*\n")
		for _, tip := range p.PreventionTips {
			fmt.Fprintf(&sb, "• %s\n", tip)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
