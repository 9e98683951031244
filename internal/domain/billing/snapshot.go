package billing

import "slices"

// SubscriptionSnapshot is an immutable copy of a subscription's plan, add-ons
// and overage mode. Accessors return copies.
type SubscriptionSnapshot struct {
	plan        *Plan
	addOns      []*AddOn
	overageMode OverageMode
}

// NewSubscriptionSnapshot deep-copies its inputs into a snapshot.
// Nil add-ons are dropped.
func NewSubscriptionSnapshot(plan *Plan, addOns []*AddOn, mode OverageMode) (*SubscriptionSnapshot, error) {
	if plan == nil {
		return nil, ErrInvalidSnapshot
	}
	if !mode.IsValid() {
		return nil, ErrInvalidOverageMode
	}

	copied := make([]*AddOn, 0, len(addOns))
	for _, a := range addOns {
		if a != nil {
			copied = append(copied, a.Clone())
		}
	}

	return &SubscriptionSnapshot{
		plan:        plan.Clone(),
		addOns:      copied,
		overageMode: mode,
	}, nil
}

// Plan returns a copy of the snapshot's plan.
func (s *SubscriptionSnapshot) Plan() *Plan {
	return s.plan.Clone()
}

// PlanID returns the snapshot's plan ID.
func (s *SubscriptionSnapshot) PlanID() string {
	return s.plan.ID()
}

// AddOns returns copies of the snapshot's add-ons in their original order.
func (s *SubscriptionSnapshot) AddOns() []*AddOn {
	out := make([]*AddOn, len(s.addOns))
	for i, a := range s.addOns {
		out[i] = a.Clone()
	}
	return out
}

// AddOnIDs returns the add-on IDs, sorted and without duplicates.
func (s *SubscriptionSnapshot) AddOnIDs() []string {
	ids := make([]string, 0, len(s.addOns))
	for _, a := range s.addOns {
		ids = append(ids, a.ID())
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// OverageMode returns the snapshot's overage mode.
func (s *SubscriptionSnapshot) OverageMode() OverageMode {
	return s.overageMode
}

func (s *SubscriptionSnapshot) clone() *SubscriptionSnapshot {
	out, _ := NewSubscriptionSnapshot(s.plan, s.addOns, s.overageMode)
	return out
}
