package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DomainConfig holds tunables of the billing domain.
type DomainConfig struct {
	SurchargeBasisPoints int64
	// SaveTimeout bounds a background selection save.
	SaveTimeout time.Duration
}

// CurrentSubscription is the subscription as it exists before editing, as plain data.
type CurrentSubscription struct {
	PlanID      string
	AddOnIDs    []string
	OverageMode OverageMode
}

// Quote is everything the confirmation step shows for a selection.
type Quote struct {
	Selection     Selection
	Plan          *Plan
	Costs         *CostBreakdown
	FirstInvoice  FirstInvoice
	Termination   *TerminationInfo // nil for monthly contracts
	OveragePolicy string
	OverageModes  []OverageMode
	RenewalDate   time.Time
	QuotedAt      time.Time
}

// Domain implements the plan-change engine on top of a catalog.
type Domain struct {
	catalog     Catalog
	policy      OveragePolicy
	costs       *CostCalculator
	clock       Clock
	store       SelectionStore
	sessions    SessionRegistry
	saveTimeout time.Duration
	logger      *zap.Logger
}

// NewBillingDomain creates a new billing domain service.
// store may be nil, in which case selections are not persisted.
func NewBillingDomain(
	catalog Catalog,
	clock Clock,
	store SelectionStore,
	sessions SessionRegistry,
	cfg DomainConfig,
	logger *zap.Logger,
) *Domain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	return &Domain{
		catalog:     catalog,
		policy:      NewOveragePolicy(catalog),
		costs:       NewCostCalculator(catalog, cfg.SurchargeBasisPoints, logger),
		clock:       clock,
		store:       store,
		sessions:    sessions,
		saveTimeout: cfg.SaveTimeout,
		logger:      logger,
	}
}

// --- Catalog ---

// Plans returns all plans in display order.
func (d *Domain) Plans() []*Plan {
	return d.catalog.Plans()
}

// Plan returns a plan by ID.
func (d *Domain) Plan(id string) (*Plan, error) {
	return d.catalog.Plan(id)
}

// AddOns returns all add-ons in display order.
func (d *Domain) AddOns() []*AddOn {
	return d.catalog.AddOns()
}

// Policy returns the overage policy.
func (d *Domain) Policy() OveragePolicy {
	return d.policy
}

// --- Calculations ---

// ComputeCosts returns the recurring cost of sel on cycle.
func (d *Domain) ComputeCosts(sel Selection, cycle BillingCycle) (*CostBreakdown, error) {
	return d.costs.ComputeCosts(sel, cycle)
}

// ComputeFirstInvoice prorates total over the rest of the current month.
func (d *Domain) ComputeFirstInvoice(total Money, cycle BillingCycle) FirstInvoice {
	return ComputeFirstInvoice(total, cycle, d.clock.Now())
}

// ComputeEarlyTerminationFee returns the termination terms as of now.
func (d *Domain) ComputeEarlyTerminationFee(monthlyTotal Money, cycle BillingCycle, contractStart time.Time) *TerminationInfo {
	return ComputeEarlyTerminationFee(monthlyTotal, cycle, contractStart, d.clock.Now())
}

// CanSelectOverageMode reports whether mode is allowed on planID.
func (d *Domain) CanSelectOverageMode(mode OverageMode, planID string) bool {
	return d.policy.CanSelectOverageMode(mode, planID)
}

// Quote builds the summary of a selection. A nil contractStart means the
// contract starts today.
func (d *Domain) Quote(sel Selection, contractStart *time.Time) (*Quote, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	plan, err := d.catalog.Plan(sel.PlanID)
	if err != nil {
		return nil, err
	}

	mode := d.policy.OnPlanChange(sel.OverageMode, plan.ID())
	if mode != sel.OverageMode {
		d.logger.Info("overage mode reset for plan",
			zap.String("plan_id", plan.ID()),
			zap.String("from", sel.OverageMode.String()),
			zap.String("to", mode.String()),
		)
		sel.OverageMode = mode
	}

	costs, err := d.costs.ComputeCosts(sel, sel.BillingCycle)
	if err != nil {
		return nil, err
	}

	now := d.clock.Now()
	start := now
	if contractStart != nil {
		start = *contractStart
	}

	return &Quote{
		Selection:     sel,
		Plan:          plan,
		Costs:         costs,
		FirstInvoice:  ComputeFirstInvoice(costs.Total, sel.BillingCycle, now),
		Termination:   ComputeEarlyTerminationFee(costs.Total, sel.BillingCycle, start, now),
		OveragePolicy: PolicyText(plan, sel.OverageMode),
		OverageModes:  d.policy.AvailableModes(plan.ID()),
		RenewalDate:   RenewalDate(sel.BillingCycle, start, now),
		QuotedAt:      now,
	}, nil
}

// --- Sessions ---

// StartSession opens an editing session seeded with the current subscription.
func (d *Domain) StartSession(current CurrentSubscription) (*SessionState, error) {
	if d.sessions == nil {
		return nil, fmt.Errorf("start session: no session registry")
	}

	session := NewSession(d.clock.Now())
	state, err := d.initialize(session, current)
	if err != nil {
		return nil, err
	}
	d.sessions.Add(session)

	d.logger.Debug("session started",
		zap.String("session_id", session.ID().String()),
		zap.String("plan_id", current.PlanID),
		zap.Time("created_at", session.CreatedAt()),
	)
	return state, nil
}

// InitializeSession (re)initializes an existing session. Once the session holds
// its original snapshot this is a no-op that returns the current state.
func (d *Domain) InitializeSession(id uuid.UUID, current CurrentSubscription) (*SessionState, error) {
	session, err := d.session(id)
	if err != nil {
		return nil, err
	}
	return d.initialize(session, current)
}

// Propose replaces the session's proposed state with the given selection.
// The overage mode is reset if the selected plan does not allow it.
func (d *Domain) Propose(id uuid.UUID, sel Selection) (*SessionState, error) {
	session, err := d.session(id)
	if err != nil {
		return nil, err
	}
	if !sel.OverageMode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOverageMode, sel.OverageMode)
	}

	plan, addOns, err := d.resolve(sel.PlanID, sel.ActiveAddOnIDs)
	if err != nil {
		return nil, err
	}
	mode := d.policy.OnPlanChange(sel.OverageMode, plan.ID())

	if err := session.UpdateProposed(plan, addOns, mode); err != nil {
		return nil, err
	}
	return session.State()
}

// SessionState returns the state of a live session.
func (d *Domain) SessionState(id uuid.UUID) (*SessionState, error) {
	session, err := d.session(id)
	if err != nil {
		return nil, err
	}
	return session.State()
}

// ActiveSessions returns the number of live sessions.
func (d *Domain) ActiveSessions() int {
	if d.sessions == nil {
		return 0
	}
	return d.sessions.Len()
}

// EndSession discards a session.
func (d *Domain) EndSession(id uuid.UUID) {
	if d.sessions != nil {
		d.sessions.Remove(id)
	}
}

func (d *Domain) session(id uuid.UUID) (*Session, error) {
	if d.sessions == nil {
		return nil, ErrSessionNotFound
	}
	return d.sessions.Get(id)
}

func (d *Domain) initialize(session *Session, current CurrentSubscription) (*SessionState, error) {
	if session.IsInitialized() {
		return session.State()
	}

	mode := current.OverageMode
	if mode == "" {
		mode = DefaultOverageMode
	}

	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOverageMode, mode)
	}

	plan, addOns, err := d.resolve(current.PlanID, current.AddOnIDs)
	if err != nil {
		return nil, err
	}

	// The current subscription may predate the plan-tier rule; start from an allowed mode.
	if allowed := d.policy.OnPlanChange(mode, plan.ID()); allowed != mode {
		d.logger.Info("overage mode reset for plan",
			zap.String("session_id", session.ID().String()),
			zap.String("plan_id", plan.ID()),
			zap.String("from", mode.String()),
			zap.String("to", allowed.String()),
		)
		mode = allowed
	}
	return session.Initialize(plan, addOns, mode)
}

// resolve looks up a plan and the add-ons of a selection. Unknown add-ons are dropped.
func (d *Domain) resolve(planID string, addOnIDs []string) (*Plan, []*AddOn, error) {
	plan, err := d.catalog.Plan(planID)
	if err != nil {
		return nil, nil, err
	}

	addOns := make([]*AddOn, 0, len(addOnIDs))
	for _, id := range addOnIDs {
		a, err := d.catalog.AddOn(id)
		if err != nil {
			d.logger.Debug("dropping unknown add-on", zap.String("add_on_id", id))
			continue
		}
		addOns = append(addOns, a)
	}
	return plan, addOns, nil
}

// --- Persisted selection ---

// RestoreSelection returns the selection saved under key, or the default
// selection on the entry tier when none is stored or the store fails.
func (d *Domain) RestoreSelection(ctx context.Context, key string) Selection {
	fallback := DefaultSelection(d.catalog.EntryTierID())
	if d.store == nil {
		return fallback
	}

	sel, err := d.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSelectionNotFound) {
			d.logger.Warn("failed to load selection, using default", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}

	if err := sel.Validate(); err != nil {
		d.logger.Warn("discarding invalid stored selection", zap.String("key", key), zap.Error(err))
		return fallback
	}
	if _, err := d.catalog.Plan(sel.PlanID); err != nil {
		d.logger.Info("stored selection references unknown plan", zap.String("key", key), zap.String("plan_id", sel.PlanID))
		return fallback
	}

	sel.OverageMode = d.policy.OnPlanChange(sel.OverageMode, sel.PlanID)
	return *sel
}

// RememberSelection saves sel under key in the background. It validates sel
// synchronously and returns without waiting for the store.
func (d *Domain) RememberSelection(key string, sel Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	if d.store == nil {
		return nil
	}

	sel = sel.clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.saveTimeout)
		defer cancel()

		if err := d.store.Save(ctx, key, sel); err != nil {
			d.logger.Warn("failed to save selection", zap.String("key", key), zap.Error(err))
		}
	}()
	return nil
}
