package chat

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/media"
)

type fakeService struct {
	calls    atomic.Int64
	reply    string
	sendErr  error
	history  []domain.ChatMessage
	histErr  error
	entered  chan struct{}
	release  chan struct{}
	lastSent struct {
		sessionID string
		message   string
		image     *string
	}
}

func (f *fakeService) SendChat(ctx context.Context, sessionID, message string, imageBase64 *string) (string, error) {
	f.calls.Add(1)
	f.lastSent.sessionID = sessionID
	f.lastSent.message = message
	f.lastSent.image = imageBase64
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.sendErr
}

func (f *fakeService) ChatHistory(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return f.history, f.histErr
}

func leafCandidate() media.Candidate {
	return media.Candidate{
		Name:     "leaf.jpg",
		MIMEType: "image/jpeg",
		Reader:   bytes.NewReader([]byte("leaf bytes")),
	}
}

func roles(msgs []domain.ChatMessage) []domain.Role {
	out := make([]domain.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestNewSessionIDsDiffer(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == b {
		t.Errorf("two session ids collided: %q", a)
	}
}

func TestSessionIDIsStable(t *testing.T) {
	s := NewSession(&fakeService{}, media.NewEncoder())
	if s.ID() == "" {
		t.Fatal("session id must not be empty")
	}
	if s.ID() != s.ID() {
		t.Error("session id must not change over the session's life")
	}
}

func TestSendAppendsUserThenAssistant(t *testing.T) {
	svc := &fakeService{reply: "Water it less."}
	s := NewSession(svc, media.NewEncoder())

	s.SetComposerText("Why are the leaves yellow?")
	reply, err := s.Send(context.Background())
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply.Message != "Water it less." {
		t.Errorf("reply = %q, want service response", reply.Message)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Message != "Why are the leaves yellow?" {
		t.Errorf("first message = %+v, want the user's text", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].Message != "Water it less." {
		t.Errorf("second message = %+v, want the assistant reply", msgs[1])
	}
	if svc.lastSent.sessionID != s.ID() {
		t.Errorf("sent session id = %q, want %q", svc.lastSent.sessionID, s.ID())
	}
}

func TestEmptySendRejectedWithoutNetworkCall(t *testing.T) {
	svc := &fakeService{}
	s := NewSession(svc, media.NewEncoder())

	if _, err := s.Send(context.Background()); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("Send() error = %v, want ErrEmptyMessage", err)
	}

	s.SetComposerText("   \n\t ")
	if _, err := s.Send(context.Background()); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("whitespace Send() error = %v, want ErrEmptyMessage", err)
	}

	if svc.calls.Load() != 0 {
		t.Errorf("network calls = %d, want 0", svc.calls.Load())
	}
	if len(s.Messages()) != 0 {
		t.Error("rejected send must not append anything")
	}
}

func TestAttachmentOnlySendUsesPlaceholder(t *testing.T) {
	svc := &fakeService{reply: "Looks like leaf spot."}
	s := NewSession(svc, media.NewEncoder())

	if _, err := s.AttachImage(context.Background(), leafCandidate()); err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	if s.PendingAttachment() == nil {
		t.Fatal("attachment should be pending before send")
	}

	if _, err := s.Send(context.Background()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msgs := s.Messages()
	if msgs[0].Message != ImagePlaceholderText {
		t.Errorf("user message = %q, want placeholder", msgs[0].Message)
	}
	if msgs[0].ImageBase64 == nil {
		t.Error("user message should carry the attachment payload")
	}
	if svc.lastSent.image == nil {
		t.Error("request should carry the attachment payload")
	}
	if s.PendingAttachment() != nil {
		t.Error("attachment must be cleared after send")
	}
}

func TestReplacingAttachmentDiscardsPrevious(t *testing.T) {
	s := NewSession(&fakeService{}, media.NewEncoder())

	first, err := s.AttachImage(context.Background(), leafCandidate())
	if err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	second, err := s.AttachImage(context.Background(), media.Candidate{
		Name:     "other.jpg",
		MIMEType: "image/jpeg",
		Reader:   bytes.NewReader([]byte("other bytes")),
	})
	if err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}

	if got := s.PendingAttachment(); got == first || got != second {
		t.Error("replacing the pending attachment should discard the previous one")
	}
}

func TestSendFailureKeepsOptimisticUserMessage(t *testing.T) {
	svc := &fakeService{sendErr: errors.New("network down")}
	s := NewSession(svc, media.NewEncoder())

	s.SetComposerText("hello?")
	if _, err := s.Send(context.Background()); err == nil {
		t.Fatal("Send() should surface the failure")
	}

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (trailing user message)", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser {
		t.Errorf("trailing message role = %v, want user", msgs[0].Role)
	}
	if s.AwaitingReply() {
		t.Error("awaitingReply must be cleared after a failed send")
	}

	// Still usable: the next send goes through.
	svc.sendErr = nil
	svc.reply = "back online"
	s.SetComposerText("hello again")
	if _, err := s.Send(context.Background()); err != nil {
		t.Fatalf("follow-up Send() error = %v", err)
	}
	want := []domain.Role{domain.RoleUser, domain.RoleUser, domain.RoleAssistant}
	got := roles(s.Messages())
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roles = %v, want %v", got, want)
		}
	}
}

func TestSendWhileAwaitingReplyRejected(t *testing.T) {
	svc := &fakeService{
		reply:   "ok",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(svc, media.NewEncoder())

	entered := svc.entered
	done := make(chan struct{})
	go func() {
		s.SetComposerText("first")
		s.Send(context.Background())
		close(done)
	}()
	<-entered

	s.SetComposerText("second")
	if _, err := s.Send(context.Background()); !errors.Is(err, domain.ErrAwaitingReply) {
		t.Errorf("Send() while awaiting error = %v, want ErrAwaitingReply", err)
	}

	close(svc.release)
	<-done

	if got := svc.calls.Load(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
}

// Three sequential sends produce strictly alternating user/assistant pairs.
func TestMessageOrderingAcrossSends(t *testing.T) {
	svc := &fakeService{reply: "noted"}
	s := NewSession(svc, media.NewEncoder())

	for i := 0; i < 3; i++ {
		s.SetComposerText("question")
		if _, err := s.Send(context.Background()); err != nil {
			t.Fatalf("Send() #%d error = %v", i+1, err)
		}
	}

	want := []domain.Role{
		domain.RoleUser, domain.RoleAssistant,
		domain.RoleUser, domain.RoleAssistant,
		domain.RoleUser, domain.RoleAssistant,
	}
	got := roles(s.Messages())
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roles = %v, want %v", got, want)
		}
	}
}

func TestRestoreReplacesLocalSequence(t *testing.T) {
	now := time.Now()
	svc := &fakeService{history: []domain.ChatMessage{
		{Role: domain.RoleUser, Message: "old question", Timestamp: now},
		{Role: domain.RoleAssistant, Message: "old answer", Timestamp: now},
	}}
	s := NewSessionWithID(svc, media.NewEncoder(), "1700000000000-abcd1234")

	s.Restore(context.Background())

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Message != "old question" || msgs[1].Message != "old answer" {
		t.Errorf("restored messages = %+v, want the server history", msgs)
	}
}

func TestRestoreFailureLeavesSessionUsable(t *testing.T) {
	svc := &fakeService{histErr: errors.New("503"), reply: "still here"}
	s := NewSessionWithID(svc, media.NewEncoder(), "1700000000000-abcd1234")

	s.Restore(context.Background())

	if len(s.Messages()) != 0 {
		t.Error("failed restore should leave the sequence empty")
	}

	s.SetComposerText("can you hear me?")
	if _, err := s.Send(context.Background()); err != nil {
		t.Fatalf("Send() after failed restore error = %v", err)
	}
}
