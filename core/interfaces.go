package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORT (host key/value persistence)
// ============================================

// Storage is the persistent store adapter. Values are JSON text.
// Get returns ErrKeyNotFound when the key is absent; Remove of an absent
// key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Storage keys
const (
	KeySession    = "session-token"
	KeyUsers      = "registered-users"
	KeyTickets    = "tickets"
	KeyActivities = "activities"
)

// ============================================
// NOTIFICATION PORT
// ============================================

// Notifier is a fire-and-forget sink for user-facing messages.
// A zero severity means SeveritySuccess and a non-positive duration
// means the sink's default.
type Notifier interface {
	Show(message string, severity Severity, duration time.Duration) string
}

// ============================================
// SESSION READ PORTS (consumed by the guard and ticket manager)
// ============================================

// SessionState is what the navigation guard needs from the session manager.
type SessionState interface {
	Initialized() bool
	Initialize(ctx context.Context) error
	IsAuthenticated() bool
}

// SessionReader exposes the current session, if any.
type SessionReader interface {
	Current() (Session, bool)
}

// ============================================
// ID PORT
// ============================================

// IDFunc returns a new unique identifier.
type IDFunc func() (string, error)
