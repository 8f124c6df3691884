// Package chat owns an ongoing plant-care conversation: session identity,
// message ordering, optimistic local append, and restore from server history.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/media"
)

// ImagePlaceholderText is sent as the user message when only an attachment
// is present.
const ImagePlaceholderText = "Please analyze this image"

// Service is the chat endpoint a session talks to.
type Service interface {
	SendChat(ctx context.Context, sessionID, message string, imageBase64 *string) (string, error)
	ChatHistory(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// NewSessionID produces an identifier unique within the service's retention
// window: a clock reading plus a random component. Opaque to the service.
func NewSessionID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Session is one conversation. The message sequence is append-only and
// totally ordered by insertion: the assistant reply for send N lands
// strictly after user message N and before anything from send N+1, enforced
// by rejecting a new Send while one is awaiting its reply.
type Session struct {
	id      string
	svc     Service
	encoder *media.Encoder

	mu            sync.Mutex
	messages      []domain.ChatMessage
	composerText  string
	attachment    media.Slot
	awaitingReply bool
}

// NewSession creates a session with a fresh identifier.
func NewSession(svc Service, encoder *media.Encoder) *Session {
	return NewSessionWithID(svc, encoder, NewSessionID())
}

// NewSessionWithID creates a session bound to an existing identifier, for
// picking a conversation back up. The id is fixed for the session's life.
func NewSessionWithID(svc Service, encoder *media.Encoder, id string) *Session {
	return &Session{id: id, svc: svc, encoder: encoder}
}

func (s *Session) ID() string {
	return s.id
}

// Messages returns a copy of the ordered message sequence.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingReply
}

// Restore replaces the local sequence wholesale with the server-held history
// for this session. A fetch failure is logged and leaves the sequence empty;
// the conversation stays usable.
func (s *Session) Restore(ctx context.Context) {
	history, err := s.svc.ChatHistory(ctx, s.id)
	if err != nil {
		slog.Warn("chat history restore failed", "session_id", s.id, "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = history
}

// AttachImage encodes the candidate into the pending attachment. Replacing a
// pending attachment discards the previous one without sending it.
func (s *Session) AttachImage(ctx context.Context, cand media.Candidate) (*domain.EncodedImage, error) {
	return s.attachment.Replace(ctx, s.encoder, cand)
}

// PendingAttachment returns the attachment that will ride on the next send,
// or nil.
func (s *Session) PendingAttachment() *domain.EncodedImage {
	return s.attachment.Current()
}

// SetComposerText stages the text for the next send.
func (s *Session) SetComposerText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composerText = text
}

// Send delivers the composed message. An empty composer with no pending
// attachment is rejected with domain.ErrEmptyMessage before any network
// call; a send while the previous reply is outstanding is rejected with
// domain.ErrAwaitingReply. The user message is appended optimistically and
// stays in the sequence even when the round-trip fails.
func (s *Session) Send(ctx context.Context) (*domain.ChatMessage, error) {
	s.mu.Lock()
	if s.awaitingReply {
		s.mu.Unlock()
		return nil, domain.ErrAwaitingReply
	}

	text := strings.TrimSpace(s.composerText)
	attachment := s.attachment.Take()
	if text == "" && attachment == nil {
		s.mu.Unlock()
		return nil, domain.ErrEmptyMessage
	}
	if text == "" {
		text = ImagePlaceholderText
	}

	var payload *string
	if attachment != nil {
		p := attachment.TransportPayload
		payload = &p
	}

	s.messages = append(s.messages, domain.ChatMessage{
		Role:        domain.RoleUser,
		Message:     text,
		ImageBase64: payload,
		Timestamp:   time.Now().UTC(),
	})
	s.composerText = ""
	s.awaitingReply = true
	s.mu.Unlock()

	reply, err := s.svc.SendChat(ctx, s.id, text, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingReply = false
	if err != nil {
		// The user message was truthfully sent from this side; it stays.
		return nil, fmt.Errorf("send chat message: %w", err)
	}

	assistant := domain.ChatMessage{
		Role:      domain.RoleAssistant,
		Message:   reply,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, assistant)
	return &assistant, nil
}
