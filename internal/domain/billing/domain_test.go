package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mock implementations ---

type MockSelectionStore struct {
	mock.Mock
}

func (m *MockSelectionStore) Load(ctx context.Context, key string) (*Selection, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Selection), args.Error(1)
}

func (m *MockSelectionStore) Save(ctx context.Context, key string, sel Selection) error {
	args := m.Called(ctx, key, sel)
	return args.Error(0)
}

type mapRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func newMapRegistry() *mapRegistry {
	return &mapRegistry{sessions: make(map[uuid.UUID]*Session)}
}

func (r *mapRegistry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

func (r *mapRegistry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *mapRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *mapRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// --- Test helpers ---

func newTestDomain(now time.Time, store SelectionStore) (*Domain, *mapRegistry) {
	registry := newMapRegistry()
	d := NewBillingDomain(DefaultCatalog(), FixedClock{T: now}, store, registry, DomainConfig{}, zap.NewNop())
	return d, registry
}

// --- Tests ---

func TestDomain_Quote(t *testing.T) {
	t.Run("monthly", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)

		q, err := d.Quote(growthWithAVM(), nil)

		require.NoError(t, err)
		assert.Equal(t, Dollars(1751), q.Costs.Total)
		assert.Equal(t, Cents(169263), q.FirstInvoice.ProratedAmount)
		assert.Equal(t, day(2026, time.May, 1), q.FirstInvoice.FirstFullBillingDate)
		assert.Nil(t, q.Termination)
		assert.Equal(t, day(2026, time.May, 1), q.RenewalDate)
		assert.Equal(t, "Growth", q.Plan.Name())
		assert.Contains(t, q.OveragePolicy, "50,000 records")
	})

	t.Run("annual with contract start", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 15), nil)
		sel := growthWithAVM().WithBillingCycle(BillingCycleAnnual)
		start := day(2026, time.January, 15)

		q, err := d.Quote(sel, &start)

		require.NoError(t, err)
		assert.Equal(t, Cents(154500), q.Costs.Total)
		require.NotNil(t, q.Termination)
		assert.Equal(t, 9, q.Termination.RemainingMonths)
		assert.Equal(t, Cents(1390500), q.Termination.RemainingContractValue)
		assert.Equal(t, Cents(695250), q.Termination.FeeDue())
		assert.Equal(t, day(2027, time.January, 15), q.RenewalDate)
	})

	t.Run("annual without contract start begins today", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 15), nil)

		q, err := d.Quote(growthWithAVM().WithBillingCycle(BillingCycleAnnual), nil)

		require.NoError(t, err)
		require.NotNil(t, q.Termination)
		assert.Equal(t, 12, q.Termination.RemainingMonths)
	})

	t.Run("unlimited is reset on entry tier", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		sel := DefaultSelection(PlanStarter)
		sel.OverageMode = OverageUnlimited

		q, err := d.Quote(sel, nil)

		require.NoError(t, err)
		assert.Equal(t, OverageCutOff, q.Selection.OverageMode)
		assert.NotContains(t, q.OverageModes, OverageUnlimited)
	})

	t.Run("invalid selection", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		sel := growthWithAVM()
		sel.PaymentMethodType = "cheque"

		_, err := d.Quote(sel, nil)
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	t.Run("unknown plan", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		sel := growthWithAVM()
		sel.PlanID = "platinum"

		_, err := d.Quote(sel, nil)
		assert.ErrorIs(t, err, ErrUnknownPlan)
	})
}

func TestDomain_Sessions(t *testing.T) {
	current := CurrentSubscription{PlanID: PlanGrowth, AddOnIDs: []string{"premium-avm", "retired"}, OverageMode: OverageUnlimited}

	t.Run("start registers the session", func(t *testing.T) {
		d, registry := newTestDomain(day(2026, time.April, 1), nil)

		state, err := d.StartSession(current)

		require.NoError(t, err)
		assert.Equal(t, 1, registry.Len())
		assert.Equal(t, []string{"premium-avm"}, state.Original.AddOnIDs())
		assert.False(t, state.Changes.HasAnyChanges())
		assert.Equal(t, day(2026, time.April, 1), state.CreatedAt)
	})

	t.Run("start on entry tier resets unlimited", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)

		state, err := d.StartSession(CurrentSubscription{PlanID: PlanStarter, OverageMode: OverageUnlimited})

		require.NoError(t, err)
		assert.Equal(t, OverageCutOff, state.Original.OverageMode())
		assert.Equal(t, OverageCutOff, state.Proposed.OverageMode())

		next, err := d.Propose(state.ID, DefaultSelection(PlanStarter).WithBillingCycle(BillingCycleAnnual))
		require.NoError(t, err)
		assert.False(t, next.Changes.OverageModeChanged)
	})

	t.Run("start with invalid overage mode", func(t *testing.T) {
		d, registry := newTestDomain(day(2026, time.April, 1), nil)

		_, err := d.StartSession(CurrentSubscription{PlanID: PlanGrowth, OverageMode: "sometimes"})

		assert.ErrorIs(t, err, ErrInvalidOverageMode)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("missing overage mode uses default", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)

		state, err := d.StartSession(CurrentSubscription{PlanID: PlanScale})

		require.NoError(t, err)
		assert.Equal(t, DefaultOverageMode, state.Original.OverageMode())
	})

	t.Run("initialize is idempotent", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		state, err := d.StartSession(current)
		require.NoError(t, err)

		again, err := d.InitializeSession(state.ID, CurrentSubscription{PlanID: PlanStarter})

		require.NoError(t, err)
		assert.Equal(t, PlanGrowth, again.Original.PlanID())
	})

	t.Run("propose downgrade resets unlimited", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		state, err := d.StartSession(current)
		require.NoError(t, err)

		sel := DefaultSelection(PlanStarter)
		sel.OverageMode = OverageUnlimited
		next, err := d.Propose(state.ID, sel)

		require.NoError(t, err)
		assert.Equal(t, OverageCutOff, next.Proposed.OverageMode())
		assert.True(t, next.Changes.PlanChanged)
		assert.True(t, next.Changes.AddOnsChanged)
		assert.True(t, next.Changes.OverageModeChanged)
		assert.Equal(t, []string{"premium-avm"}, next.Changes.RemovedAddOnIDs)
	})

	t.Run("propose unknown plan", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		state, err := d.StartSession(current)
		require.NoError(t, err)

		_, err = d.Propose(state.ID, DefaultSelection("platinum"))
		assert.ErrorIs(t, err, ErrUnknownPlan)
	})

	t.Run("unknown session", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)

		_, err := d.SessionState(uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("end session", func(t *testing.T) {
		d, registry := newTestDomain(day(2026, time.April, 1), nil)
		state, err := d.StartSession(current)
		require.NoError(t, err)

		d.EndSession(state.ID)

		assert.Equal(t, 0, registry.Len())
		_, err = d.SessionState(state.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("no registry", func(t *testing.T) {
		d := NewBillingDomain(DefaultCatalog(), nil, nil, nil, DomainConfig{}, nil)

		_, err := d.StartSession(current)
		assert.Error(t, err)
		_, err = d.SessionState(uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestDomain_RestoreSelection(t *testing.T) {
	ctx := context.Background()
	fallback := DefaultSelection(PlanStarter)

	t.Run("found", func(t *testing.T) {
		store := new(MockSelectionStore)
		saved := growthWithAVM()
		store.On("Load", ctx, "acct-1").Return(&saved, nil)
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		got := d.RestoreSelection(ctx, "acct-1")

		assert.Equal(t, saved, got)
		store.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockSelectionStore)
		store.On("Load", ctx, "acct-1").Return(nil, ErrSelectionNotFound)
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		assert.Equal(t, fallback, d.RestoreSelection(ctx, "acct-1"))
	})

	t.Run("store error", func(t *testing.T) {
		store := new(MockSelectionStore)
		store.On("Load", ctx, "acct-1").Return(nil, errors.New("connection refused"))
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		assert.Equal(t, fallback, d.RestoreSelection(ctx, "acct-1"))
	})

	t.Run("invalid stored selection", func(t *testing.T) {
		store := new(MockSelectionStore)
		saved := growthWithAVM()
		saved.BillingCycle = "fortnightly"
		store.On("Load", ctx, "acct-1").Return(&saved, nil)
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		assert.Equal(t, fallback, d.RestoreSelection(ctx, "acct-1"))
	})

	t.Run("retired plan", func(t *testing.T) {
		store := new(MockSelectionStore)
		saved := growthWithAVM()
		saved.PlanID = "legacy"
		store.On("Load", ctx, "acct-1").Return(&saved, nil)
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		assert.Equal(t, fallback, d.RestoreSelection(ctx, "acct-1"))
	})

	t.Run("unlimited on entry tier is reset", func(t *testing.T) {
		store := new(MockSelectionStore)
		saved := DefaultSelection(PlanStarter)
		saved.OverageMode = OverageUnlimited
		store.On("Load", ctx, "acct-1").Return(&saved, nil)
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		assert.Equal(t, OverageCutOff, d.RestoreSelection(ctx, "acct-1").OverageMode)
	})

	t.Run("no store", func(t *testing.T) {
		d, _ := newTestDomain(day(2026, time.April, 1), nil)
		assert.Equal(t, fallback, d.RestoreSelection(ctx, "acct-1"))
	})
}

func TestDomain_RememberSelection(t *testing.T) {
	t.Run("saves in background", func(t *testing.T) {
		store := new(MockSelectionStore)
		saved := make(chan Selection, 1)
		store.On("Save", mock.Anything, "acct-1", mock.Anything).
			Run(func(args mock.Arguments) { saved <- args.Get(2).(Selection) }).
			Return(nil)
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		sel := growthWithAVM()
		require.NoError(t, d.RememberSelection("acct-1", sel))
		sel.ActiveAddOnIDs[0] = "mutated"

		select {
		case got := <-saved:
			assert.Equal(t, []string{"premium-avm"}, got.ActiveAddOnIDs)
		case <-time.After(time.Second):
			t.Fatal("selection was not saved")
		}
	})

	t.Run("save failure is not returned", func(t *testing.T) {
		store := new(MockSelectionStore)
		done := make(chan struct{})
		store.On("Save", mock.Anything, "acct-1", mock.Anything).
			Run(func(mock.Arguments) { close(done) }).
			Return(errors.New("redis down"))
		d, _ := newTestDomain(day(2026, time.April, 1), store)

		assert.NoError(t, d.RememberSelection("acct-1", growthWithAVM()))

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("save was not attempted")
		}
	})

	t.Run("invalid selection is rejected synchronously", func(t *testing.T) {
		store := new(MockSelectionStore)
		d, _ := newTestDomain(day(2026, time.April, 1), store)
		sel := growthWithAVM()
		sel.OverageMode = "sometimes"

		assert.ErrorIs(t, d.RememberSelection("acct-1", sel), ErrInvalidOverageMode)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}
