package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/leafwise/leafwise/internal/domain"
)

func TestReplaceInstallsResult(t *testing.T) {
	var slot Slot
	enc := NewEncoder()

	img, err := slot.Replace(context.Background(), enc, Candidate{
		Name:     "leaf.jpg",
		MIMEType: "image/jpeg",
		Reader:   bytes.NewReader([]byte("bytes")),
	})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if slot.Current() != img {
		t.Error("Current() should return the installed image")
	}
}

func TestReplaceFailureKeepsPreviousSelection(t *testing.T) {
	var slot Slot
	enc := NewEncoder()

	first, err := slot.Replace(context.Background(), enc, Candidate{
		Name:     "leaf.jpg",
		MIMEType: "image/jpeg",
		Reader:   bytes.NewReader([]byte("bytes")),
	})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	_, err = slot.Replace(context.Background(), enc, Candidate{
		Name:     "notes.txt",
		MIMEType: "text/plain",
		Reader:   strings.NewReader("nope"),
	})
	if !errors.Is(err, domain.ErrInvalidMediaType) {
		t.Fatalf("Replace() error = %v, want ErrInvalidMediaType", err)
	}

	if slot.Current() != first {
		t.Error("failed replace must leave the previous selection untouched")
	}
}

func TestReplaceLastCallWins(t *testing.T) {
	var slot Slot
	enc := NewEncoder()

	gate := newGateReader([]byte("slow bytes"))
	firstDone := make(chan error, 1)
	go func() {
		_, err := slot.Replace(context.Background(), enc, Candidate{
			Name:     "slow.jpg",
			MIMEType: "image/jpeg",
			Reader:   gate,
		})
		firstDone <- err
	}()

	<-gate.started

	// Second selection completes while the first read is still blocked.
	second, err := slot.Replace(context.Background(), enc, Candidate{
		Name:     "fast.jpg",
		MIMEType: "image/jpeg",
		Reader:   bytes.NewReader([]byte("fast bytes")),
	})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	gate.release()

	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("superseded replace error = %v, want ErrSuperseded", err)
	}
	if slot.Current() != second {
		t.Error("slot should hold the most recent selection")
	}
}

func TestClearSupersedesInFlightEncode(t *testing.T) {
	var slot Slot
	enc := NewEncoder()

	gate := newGateReader([]byte("slow bytes"))
	done := make(chan error, 1)
	go func() {
		_, err := slot.Replace(context.Background(), enc, Candidate{
			Name:     "slow.jpg",
			MIMEType: "image/jpeg",
			Reader:   gate,
		})
		done <- err
	}()

	<-gate.started
	slot.Clear()
	gate.release()

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("replace after clear error = %v, want ErrSuperseded", err)
	}
	if slot.Current() != nil {
		t.Error("cleared slot must stay empty")
	}
}

func TestTakeClearsSlot(t *testing.T) {
	var slot Slot
	enc := NewEncoder()

	img, err := slot.Replace(context.Background(), enc, Candidate{
		Name:     "leaf.jpg",
		MIMEType: "image/jpeg",
		Reader:   bytes.NewReader([]byte("bytes")),
	})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if got := slot.Take(); got != img {
		t.Error("Take() should return the installed image")
	}
	if slot.Current() != nil {
		t.Error("Take() should clear the slot")
	}
	if slot.Take() != nil {
		t.Error("second Take() should return nil")
	}
}

// gateReader blocks its first Read until released, then serves its data.
type gateReader struct {
	data    []byte
	started chan struct{}
	gate    chan struct{}
	once    bool
	pos     int
}

func newGateReader(data []byte) *gateReader {
	return &gateReader{
		data:    data,
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
}

func (g *gateReader) release() { close(g.gate) }

func (g *gateReader) Read(p []byte) (int, error) {
	if !g.once {
		g.once = true
		close(g.started)
		<-g.gate
	}
	if g.pos >= len(g.data) {
		return 0, io.EOF
	}
	n := copy(p, g.data[g.pos:])
	g.pos += n
	return n, nil
}
