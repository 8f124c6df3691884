// Package handler wires Telegram updates to the diagnosis, chat, and history
// controllers. It is the navigation shell: it routes between the three views
// and holds no business state beyond the per-chat route.
package handler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"

	"github.com/leafwise/leafwise/internal/backend"
	"github.com/leafwise/leafwise/internal/chat"
	"github.com/leafwise/leafwise/internal/config"
	"github.com/leafwise/leafwise/internal/diagnosis"
	"github.com/leafwise/leafwise/internal/history"
	"github.com/leafwise/leafwise/internal/media"
	"github.com/leafwise/leafwise/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot     *bot.Bot
	cfg     *config.Config
	client  *backend.Client
	states  *service.StateService
	encoder *media.Encoder

	mu       sync.RWMutex
	runtimes map[int64]*chatRuntime
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot    *bot.Bot
	Cfg    *config.Config
	Client *backend.Client
	States *service.StateService
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:      deps.Bot,
		cfg:      deps.Cfg,
		client:   deps.Client,
		states:   deps.States,
		encoder:  media.NewEncoder(),
		runtimes: make(map[int64]*chatRuntime),
	}
}

// chatRuntime is the set of controllers for one Telegram chat. Each chat
// gets its own and they share nothing, so no coordination is needed across
// chats.
type chatRuntime struct {
	diagnosis *diagnosis.Controller
	session   *chat.Session
	history   *history.View
}

// runtime returns the controllers for a chat, creating them on first use.
// Creation restores the persisted chat session when one exists.
func (h *Handler) runtime(ctx context.Context, chatID int64) *chatRuntime {
	h.mu.RLock()
	if rt, ok := h.runtimes[chatID]; ok {
		h.mu.RUnlock()
		return rt
	}
	h.mu.RUnlock()

	session := h.newSession(ctx, chatID)

	h.mu.Lock()
	defer h.mu.Unlock()
	// Another update may have built the runtime while we were restoring.
	if rt, ok := h.runtimes[chatID]; ok {
		return rt
	}
	rt := &chatRuntime{
		diagnosis: diagnosis.NewController(h.client, h.encoder),
		session:   session,
		history:   history.NewView(h.client),
	}
	h.runtimes[chatID] = rt
	return rt
}

// newSession resumes the persisted session for a chat, or starts a fresh one
// and persists its identifier.
func (h *Handler) newSession(ctx context.Context, chatID int64) *chat.Session {
	sessionID, err := h.states.SessionID(ctx, chatID)
	if err != nil {
		slog.Error("load chat session id", "error", err, "chat_id", chatID)
	}

	if sessionID != "" {
		session := chat.NewSessionWithID(h.client, h.encoder, sessionID)
		restoreCtx, cancel := context.WithTimeout(ctx, config.RestoreTimeout)
		defer cancel()
		session.Restore(restoreCtx)
		return session
	}

	session := chat.NewSession(h.client, h.encoder)
	if err := h.states.SetSessionID(ctx, chatID, session.ID()); err != nil {
		slog.Error("persist chat session id", "error", err, "chat_id", chatID)
	}
	return session
}

// resetSession replaces the chat's session with a fresh one and persists the
// new identifier.
func (h *Handler) resetSession(ctx context.Context, chatID int64) *chat.Session {
	session := chat.NewSession(h.client, h.encoder)
	if err := h.states.SetSessionID(ctx, chatID, session.ID()); err != nil {
		slog.Error("persist chat session id", "error", err, "chat_id", chatID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	rt, ok := h.runtimes[chatID]
	if !ok {
		rt = &chatRuntime{
			diagnosis: diagnosis.NewController(h.client, h.encoder),
			history:   history.NewView(h.client),
		}
		h.runtimes[chatID] = rt
	}
	rt.session = session
	return session
}
