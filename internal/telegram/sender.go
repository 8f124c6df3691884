package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const MaxMessageLen = 4096

// SendLongMessage sends a potentially long message, splitting it into parts
// if needed. Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) error {
	for _, part := range SplitMessage(text, MaxMessageLen) {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			if _, err = b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

// SplitMessage splits text into chunks of at most maxLen runes, preferring
// newline boundaries.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(runes) > maxLen {
		cut := maxLen
		if i := strings.LastIndex(string(runes[:maxLen]), "\n"); i > maxLen/2 {
			cut = len([]rune(string(runes[:maxLen])[:i])) + 1
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

// StartTyping sends the "typing..." action every 4 seconds until the
// returned cancel function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.SendChatAction(ctx, &bot.SendChatActionParams{
					ChatID: chatID,
					Action: models.ChatActionTyping,
				})
			}
		}
	}()
	return cancel
}
