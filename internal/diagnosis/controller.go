// Package diagnosis owns the single-shot capture, submit, result lifecycle
// for one-off diagnosis requests.
package diagnosis

import (
	"context"
	"errors"
	"sync"

	"github.com/leafwise/leafwise/internal/backend"
	"github.com/leafwise/leafwise/internal/domain"
	"github.com/leafwise/leafwise/internal/media"
)

// State of the controller. Pending and the two result states are mutually
// exclusive.
type State int

const (
	Idle State = iota
	Ready
	Pending
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrSuperseded reports that a submission completed after Reset discarded
// its lifecycle; the result was dropped.
var ErrSuperseded = errors.New("submission superseded by reset")

// Service is the diagnosis endpoint the controller submits to.
type Service interface {
	Predict(ctx context.Context, imageBase64 string) (*domain.Prediction, error)
}

// GenericFailureMessage is shown when the service reports no detail.
const GenericFailureMessage = "Diagnosis request failed. Please try again."

// Controller drives one image selection through submit to a result. At most
// one request is in flight per controller; gating is by explicit pending
// state, mirrored by the UI disabling the affordances.
type Controller struct {
	svc     Service
	encoder *media.Encoder

	mu      sync.Mutex
	slot    media.Slot
	state   State
	gen     uint64 // bumped by Reset so a late result is discarded
	result  *domain.Prediction
	failure string
}

func NewController(svc Service, encoder *media.Encoder) *Controller {
	return &Controller{svc: svc, encoder: encoder, state: Idle}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Prediction returns the resolved diagnosis, or nil outside Resolved.
func (c *Controller) Prediction() *domain.Prediction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// FailureMessage returns the surfaced failure text, empty outside Failed.
func (c *Controller) FailureMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Image returns the current selection, or nil.
func (c *Controller) Image() *domain.EncodedImage {
	return c.slot.Current()
}

// SelectImage encodes the candidate and makes it the current selection,
// discarding any previous prediction or failure. Rejected while a submit is
// pending. A failed or superseded encode leaves the previous selection and
// state untouched.
func (c *Controller) SelectImage(ctx context.Context, cand media.Candidate) (*domain.EncodedImage, error) {
	c.mu.Lock()
	if c.state == Pending {
		c.mu.Unlock()
		return nil, domain.ErrRequestInFlight
	}
	c.mu.Unlock()

	img, err := c.slot.Replace(ctx, c.encoder, cand)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Ready
	c.result = nil
	c.failure = ""
	return img, nil
}

// Submit issues exactly one diagnosis request for the current selection.
// A submit while one is already pending makes no network call. On success
// the selection is consumed and the controller resolves with the returned
// prediction; on failure the selection is retained so the user can retry.
func (c *Controller) Submit(ctx context.Context) (*domain.Prediction, error) {
	c.mu.Lock()
	if c.state == Pending {
		c.mu.Unlock()
		return nil, domain.ErrRequestInFlight
	}
	img := c.slot.Current()
	if img == nil {
		c.mu.Unlock()
		return nil, domain.ErrNoImageSelected
	}
	c.state = Pending
	c.gen++
	token := c.gen
	payload := img.TransportPayload
	c.mu.Unlock()

	pred, err := c.svc.Predict(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.gen {
		// Reset happened mid-flight; the lifecycle this result belongs to is
		// gone.
		return nil, ErrSuperseded
	}
	if err != nil {
		c.state = Failed
		c.failure = failureMessage(err)
		return nil, err
	}
	c.state = Resolved
	c.result = pred
	c.failure = ""
	c.slot.Clear()
	return pred, nil
}

// Reset returns to Idle from any state, clearing selection and result. Legal
// from Pending as the user's escape from a stuck request; the eventual
// response is then discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slot.Clear()
	c.state = Idle
	c.result = nil
	c.failure = ""
	c.gen++
}

func failureMessage(err error) string {
	var reqErr *backend.RequestError
	if errors.As(err, &reqErr) && reqErr.Detail != "" {
		return reqErr.Detail
	}
	return GenericFailureMessage
}
