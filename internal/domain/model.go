package domain

import (
	"strings"
	"time"
)

// Prediction is a single diagnosis returned by the backend. Immutable once
// received. Treatments are numbered steps and keep their order.
type Prediction struct {
	ID             string
	DiseaseName    string
	Confidence     int // percentage, 0-100
	Description    string
	Treatments     []string
	PreventionTips []string
	Timestamp      time.Time
}

// Healthy reports whether the prediction describes a healthy leaf. Display
// hint only, never used to mutate data.
func (p Prediction) Healthy() bool {
	return strings.Contains(strings.ToLower(p.DiseaseName), "healthy")
}

// HistoryEntry is a read-only projection of a past Prediction as returned by
// the backend's list endpoint. The client caches the last fetched sequence
// for rendering and never mutates it.
type HistoryEntry struct {
	Prediction
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in a conversation. Messages within a session are
// append-only and never reordered or deleted. Message may be empty only when
// ImageBase64 is set.
type ChatMessage struct {
	Role        Role
	Message     string
	ImageBase64 *string // transport payload only, no data-URI prefix
	Timestamp   time.Time
}

// Route is a top-level view of the bot shell.
type Route string

const (
	RouteDiagnose Route = "diagnose"
	RouteChat     Route = "chat"
	RouteHistory  Route = "history"
)

// ParseRoute maps a stored route string to a Route, falling back to the
// diagnose view for anything unknown.
func ParseRoute(s string) Route {
	switch Route(s) {
	case RouteChat:
		return RouteChat
	case RouteHistory:
		return RouteHistory
	default:
		return RouteDiagnose
	}
}
