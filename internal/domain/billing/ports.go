package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injected so date-dependent billing is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// SelectionStore persists a selection between visits.
// This interface is defined in the domain layer (Port) and implemented in the adapter layer.
type SelectionStore interface {
	// Load returns the selection saved for key or ErrSelectionNotFound.
	Load(ctx context.Context, key string) (*Selection, error)

	// Save stores the selection for key.
	Save(ctx context.Context, key string, sel Selection) error
}

// SessionRegistry holds live editing sessions by ID.
type SessionRegistry interface {
	// Add registers a session.
	Add(session *Session)

	// Get returns the session or ErrSessionNotFound.
	Get(id uuid.UUID) (*Session, error)

	// Remove drops a session.
	Remove(id uuid.UUID)

	// Len returns the number of live sessions.
	Len() int
}
