package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/service"
)

type ctxKey string

const RouteKey ctxKey = "route"

// GetRoute extracts the chat's current route from context, defaulting to the
// diagnose view.
func GetRoute(ctx context.Context) domain.Route {
	r, ok := ctx.Value(RouteKey).(domain.Route)
	if !ok {
		return domain.RouteDiagnose
	}
	return r
}

// RouteLoader returns middleware that loads the chat's persisted route into
// context so handlers can dispatch incoming text and photos.
func RouteLoader(states *service.StateService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var chatID int64
			if update.Message != nil {
				chatID = update.Message.Chat.ID
			} else if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
				chatID = update.CallbackQuery.Message.Message.Chat.ID
			}

			if chatID != 0 {
				route, err := states.Route(ctx, chatID)
				if err != nil {
					slog.Error("load route", "error", err, "chat_id", chatID)
				}
				ctx = context.WithValue(ctx, RouteKey, route)
			}

			next(ctx, b, update)
		}
	}
}
