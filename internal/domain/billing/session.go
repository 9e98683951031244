package billing

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session tracks one "manage subscription" editing session.
//
// The original snapshot is captured by the first successful Initialize and is
// never reassigned afterwards. The proposed snapshot mirrors the user's edits
// and is replaced wholesale by UpdateProposed. The two never share references.
type Session struct {
	mu          sync.Mutex
	id          uuid.UUID
	createdAt   time.Time
	initialized bool
	original    *SubscriptionSnapshot
	proposed    *SubscriptionSnapshot
}

// SessionState is a point-in-time view of a session.
type SessionState struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Original  *SubscriptionSnapshot
	Proposed  *SubscriptionSnapshot
	Changes   ChangeSet
}

// ChangeSet describes how the proposed subscription differs from the original.
type ChangeSet struct {
	PlanChanged        bool
	AddOnsChanged      bool
	OverageModeChanged bool

	FromPlanID      string
	ToPlanID        string
	AddedAddOnIDs   []string
	RemovedAddOnIDs []string
	FromOverageMode OverageMode
	ToOverageMode   OverageMode
}

// HasAnyChanges returns true if anything differs.
func (c ChangeSet) HasAnyChanges() bool {
	return c.PlanChanged || c.AddOnsChanged || c.OverageModeChanged
}

// NewSession creates an uninitialized session opened at createdAt.
func NewSession(createdAt time.Time) *Session {
	return &Session{
		id:        uuid.New(),
		createdAt: createdAt,
	}
}

// ID returns the session ID.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// IsInitialized reports whether the original snapshot has been captured.
func (s *Session) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Initialize captures the original snapshot and seeds the proposed one.
// Only the first successful call has an effect; later calls return the current
// state untouched, whatever their arguments.
func (s *Session) Initialize(plan *Plan, addOns []*AddOn, mode OverageMode) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return s.stateLocked(), nil
	}

	original, err := NewSubscriptionSnapshot(plan, addOns, mode)
	if err != nil {
		return nil, err
	}

	s.original = original
	s.proposed = original.clone()
	s.initialized = true
	return s.stateLocked(), nil
}

// UpdateProposed replaces the proposed snapshot with a copy of the inputs.
func (s *Session) UpdateProposed(plan *Plan, addOns []*AddOn, mode OverageMode) error {
	proposed, err := NewSubscriptionSnapshot(plan, addOns, mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.proposed = proposed
	return nil
}

// State returns a view of the session.
func (s *Session) State() (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return s.stateLocked(), nil
}

// Original returns a copy of the original snapshot.
func (s *Session) Original() (*SubscriptionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return s.original.clone(), nil
}

// Proposed returns a copy of the proposed snapshot.
func (s *Session) Proposed() (*SubscriptionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return s.proposed.clone(), nil
}

// PlanChanged reports whether the proposed plan differs from the original.
func (s *Session) PlanChanged() (bool, error) {
	c, err := s.Changes()
	if err != nil {
		return false, err
	}
	return c.PlanChanged, nil
}

// AddOnsChanged reports whether the set of add-on IDs differs.
func (s *Session) AddOnsChanged() (bool, error) {
	c, err := s.Changes()
	if err != nil {
		return false, err
	}
	return c.AddOnsChanged, nil
}

// OverageModeChanged reports whether the overage mode differs.
func (s *Session) OverageModeChanged() (bool, error) {
	c, err := s.Changes()
	if err != nil {
		return false, err
	}
	return c.OverageModeChanged, nil
}

// HasAnyChanges reports whether anything differs.
func (s *Session) HasAnyChanges() (bool, error) {
	c, err := s.Changes()
	if err != nil {
		return false, err
	}
	return c.HasAnyChanges(), nil
}

// Changes compares the proposed snapshot against the original.
func (s *Session) Changes() (ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ChangeSet{}, ErrNotInitialized
	}
	return diffSnapshots(s.original, s.proposed), nil
}

func (s *Session) stateLocked() *SessionState {
	return &SessionState{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Original:  s.original.clone(),
		Proposed:  s.proposed.clone(),
		Changes:   diffSnapshots(s.original, s.proposed),
	}
}

func diffSnapshots(original, proposed *SubscriptionSnapshot) ChangeSet {
	before := original.AddOnIDs()
	after := proposed.AddOnIDs()

	c := ChangeSet{
		FromPlanID:      original.PlanID(),
		ToPlanID:        proposed.PlanID(),
		FromOverageMode: original.OverageMode(),
		ToOverageMode:   proposed.OverageMode(),
		AddedAddOnIDs:   difference(after, before),
		RemovedAddOnIDs: difference(before, after),
	}
	c.PlanChanged = c.FromPlanID != c.ToPlanID
	c.AddOnsChanged = len(c.AddedAddOnIDs) > 0 || len(c.RemovedAddOnIDs) > 0
	c.OverageModeChanged = c.FromOverageMode != c.ToOverageMode
	return c
}

// difference returns the elements of a not in b. Both must be sorted.
func difference(a, b []string) []string {
	var out []string
	for _, v := range a {
		if _, found := slices.BinarySearch(b, v); !found {
			out = append(out, v)
		}
	}
	return out
}
