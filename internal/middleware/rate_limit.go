package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/config"
)

// RateLimit returns middleware that enforces a per-chat cooldown between
// messages, so a burst of sends cannot stack service calls.
func RateLimit() bot.Middleware {
	var mu sync.Mutex
	lastSeen := make(map[int64]time.Time)

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages, not callbacks.
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			now := time.Now()

			mu.Lock()
			last, ok := lastSeen[chatID]
			if ok && now.Sub(last) < config.Cooldown {
				mu.Unlock()
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Too many requests. Give it a moment.",
				})
				return
			}
			lastSeen[chatID] = now
			mu.Unlock()

			next(ctx, b, update)
		}
	}
}
