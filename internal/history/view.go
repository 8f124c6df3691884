// Package history renders the list of past diagnoses.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/leafwise/leafwise/internal/domain"
)

// Service is the prediction-list endpoint the view reads from.
type Service interface {
	ListPredictions(ctx context.Context) ([]domain.HistoryEntry, error)
}

// View holds the last successfully loaded sequence of history entries.
// Presentation order is exactly the order the service returned; the client
// never re-sorts. On a failed load the prior sequence is retained so a
// partial or garbled list is never shown.
type View struct {
	svc Service

	mu      sync.Mutex
	entries []domain.HistoryEntry
	loaded  bool
}

func NewView(svc Service) *View {
	return &View{svc: svc}
}

// Load fetches the full prediction list and replaces the cached sequence.
// On failure the previous sequence stays and the error wraps
// domain.ErrLoadFailed.
func (v *View) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := v.svc.ListPredictions(ctx)
	if err != nil {
		return v.Entries(), fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}

	v.mu.Lock()
	v.entries = entries
	v.loaded = true
	v.mu.Unlock()
	return v.Entries(), nil
}

// Entries returns a copy of the last successfully loaded sequence.
func (v *View) Entries() []domain.HistoryEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.HistoryEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Loaded reports whether any load has succeeded yet.
func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}
