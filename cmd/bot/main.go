package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	leafwise "github.com/leafwise/leafwise"
	"github.com/leafwise/leafwise/internal/backend"
	"github.com/leafwise/leafwise/internal/config"
	"github.com/leafwise/leafwise/internal/handler"
	"github.com/leafwise/leafwise/internal/middleware"
	"github.com/leafwise/leafwise/internal/repository"
	"github.com/leafwise/leafwise/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(leafwise.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize services
	states := service.NewStateService(repository.NewChatStates(pool))
	client := backend.New(backend.Options{
		BaseURL: cfg.BackendBaseURL,
		Timeout: config.RequestTimeout,
	})

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(),
			middleware.RouteLoader(states),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			// Photos and image documents have no text and land here.
			if len(update.Message.Photo) > 0 || update.Message.Document != nil {
				h.HandlePhoto(ctx, b, update)
			}
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:    b,
		Cfg:    cfg,
		Client: client,
		States: states,
	})

	// Register command and callback handlers
	h.Register()

	// Default text handler: route photos and plain text by the current view
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		if len(update.Message.Photo) > 0 || update.Message.Document != nil {
			h.HandlePhoto(ctx, b, update)
			return
		}
		// Skip commands
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			return
		}
		h.HandleText(ctx, b, update)
	})

	slog.Info("starting bot", "backend", cfg.BackendBaseURL)
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
}
