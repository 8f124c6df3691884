package media

import (
	"context"
	"errors"
	"sync"

	"github.com/leafwise/leafwise/internal/domain"
)

// ErrSuperseded reports that an encode finished after a newer Replace or
// Clear on the same slot; its result was discarded, not applied.
var ErrSuperseded = errors.New("encode superseded by a newer selection")

// Slot holds one logical image selection. Each Replace call gets a
// generation token; a result whose token no longer matches the slot's
// current generation is discarded, so rapid re-selection is last-call-wins
// regardless of how the underlying reads interleave.
type Slot struct {
	mu  sync.Mutex
	gen uint64
	img *domain.EncodedImage
}

// Replace encodes the candidate and installs the result, unless a newer
// Replace or Clear happened while the encode was in flight. A failed encode
// leaves the current selection untouched.
func (s *Slot) Replace(ctx context.Context, enc *Encoder, c Candidate) (*domain.EncodedImage, error) {
	s.mu.Lock()
	s.gen++
	token := s.gen
	s.mu.Unlock()

	img, err := enc.Encode(ctx, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	s.img = img
	return img, nil
}

// Current returns the installed selection, or nil.
func (s *Slot) Current() *domain.EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Take returns the installed selection and clears the slot.
func (s *Slot) Take() *domain.EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.img
	s.img = nil
	s.gen++
	return img
}

// Clear discards the selection. Any in-flight encode is superseded.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = nil
	s.gen++
}
