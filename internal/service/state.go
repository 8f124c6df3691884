package service

import (
	"context"

	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/repository"
)

// StateService persists the thin shell state per Telegram chat: the current
// route and the active chat session identifier. All conversation content
// stays server-side; only the correlation key is kept here.
type StateService struct {
	states *repository.ChatStates
}

func NewStateService(states *repository.ChatStates) *StateService {
	return &StateService{states: states}
}

// Route returns the chat's current route, defaulting to the diagnose view.
func (s *StateService) Route(ctx context.Context, chatID int64) (domain.Route, error) {
	cs, err := s.states.Get(ctx, chatID)
	if err != nil {
		return domain.RouteDiagnose, err
	}
	if cs == nil {
		return domain.RouteDiagnose, nil
	}
	return domain.ParseRoute(cs.Route), nil
}

func (s *StateService) SetRoute(ctx context.Context, chatID int64, route domain.Route) error {
	return s.states.SetRoute(ctx, chatID, string(route))
}

// SessionID returns the persisted chat session id for a chat, or empty when
// none has been stored.
func (s *StateService) SessionID(ctx context.Context, chatID int64) (string, error) {
	cs, err := s.states.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	if cs == nil || cs.ChatSessionID == nil {
		return "", nil
	}
	return *cs.ChatSessionID, nil
}

func (s *StateService) SetSessionID(ctx context.Context, chatID int64, sessionID string) error {
	return s.states.SetChatSessionID(ctx, chatID, sessionID)
}
