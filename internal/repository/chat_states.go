package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatState is the persisted shell state for one Telegram chat: which view
// it is on and which chat session to pick back up after a restart.
type ChatState struct {
	ChatID        int64
	Route         string
	ChatSessionID *string
}

type ChatStates struct {
	db *pgxpool.Pool
}

func NewChatStates(db *pgxpool.Pool) *ChatStates {
	return &ChatStates{db: db}
}

// Get returns the stored state for a chat, or nil when none exists yet.
func (r *ChatStates) Get(ctx context.Context, chatID int64) (*ChatState, error) {
	row := r.db.QueryRow(ctx,
		`SELECT chat_id, route, chat_session_id FROM chat_states WHERE chat_id = $1`,
		chatID)

	var cs ChatState
	if err := row.Scan(&cs.ChatID, &cs.Route, &cs.ChatSessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat state: %w", err)
	}
	return &cs, nil
}

// Upsert stores the full state for a chat.
func (r *ChatStates) Upsert(ctx context.Context, cs ChatState) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_states (chat_id, route, chat_session_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (chat_id) DO UPDATE
		 SET route = EXCLUDED.route,
		     chat_session_id = EXCLUDED.chat_session_id,
		     updated_at = now()`,
		cs.ChatID, cs.Route, cs.ChatSessionID)
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}
	return nil
}

// SetRoute updates only the route for a chat, creating the row if needed.
func (r *ChatStates) SetRoute(ctx context.Context, chatID int64, route string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_states (chat_id, route)
		 VALUES ($1, $2)
		 ON CONFLICT (chat_id) DO UPDATE
		 SET route = EXCLUDED.route, updated_at = now()`,
		chatID, route)
	if err != nil {
		return fmt.Errorf("set route: %w", err)
	}
	return nil
}

// SetChatSessionID updates the persisted chat session id for a chat.
func (r *ChatStates) SetChatSessionID(ctx context.Context, chatID int64, sessionID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_states (chat_id, chat_session_id)
		 VALUES ($1, $2)
		 ON CONFLICT (chat_id) DO UPDATE
		 SET chat_session_id = EXCLUDED.chat_session_id, updated_at = now()`,
		chatID, sessionID)
	if err != nil {
		return fmt.Errorf("set chat session id: %w", err)
	}
	return nil
}
