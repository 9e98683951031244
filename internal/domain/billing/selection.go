package billing

import (
	"fmt"
	"slices"
)

// Selection is the working state of a subscription being edited.
// ActiveAddOnIDs is a set: order carries no meaning and duplicates are ignored.
type Selection struct {
	PlanID            string            `json:"plan_id"`
	BillingCycle      BillingCycle      `json:"billing_cycle"`
	ActiveAddOnIDs    []string          `json:"active_add_on_ids"`
	OverageMode       OverageMode       `json:"overage_mode"`
	PaymentMethodType PaymentMethodType `json:"payment_method_type"`
	CardIsDefault     bool              `json:"card_is_default"`
}

// DefaultSelection returns the selection used when nothing was persisted.
func DefaultSelection(planID string) Selection {
	return Selection{
		PlanID:            planID,
		BillingCycle:      BillingCycleMonthly,
		OverageMode:       DefaultOverageMode,
		PaymentMethodType: PaymentMethodCard,
		CardIsDefault:     true,
	}
}

// Validate checks the enumerated fields of the selection.
func (s Selection) Validate() error {
	if s.PlanID == "" {
		return fmt.Errorf("%w: plan ID is required", ErrInvalidRequest)
	}
	if !s.BillingCycle.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBillingCycle, s.BillingCycle)
	}
	if !s.OverageMode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidOverageMode, s.OverageMode)
	}
	if !s.PaymentMethodType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s.PaymentMethodType)
	}
	return nil
}

// AddOnIDs returns the active add-on IDs, sorted and without duplicates.
func (s Selection) AddOnIDs() []string {
	ids := slices.Clone(s.ActiveAddOnIDs)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// HasAddOn reports whether the add-on is active.
func (s Selection) HasAddOn(id string) bool {
	return slices.Contains(s.ActiveAddOnIDs, id)
}

// ToggleAddOn returns a copy with the add-on switched on or off.
func (s Selection) ToggleAddOn(id string) Selection {
	out := s.clone()
	if out.HasAddOn(id) {
		out.ActiveAddOnIDs = slices.DeleteFunc(out.ActiveAddOnIDs, func(v string) bool { return v == id })
		return out
	}
	out.ActiveAddOnIDs = append(out.ActiveAddOnIDs, id)
	return out
}

// WithPlan returns a copy on a new plan, resetting the overage mode if the
// policy no longer allows it.
func (s Selection) WithPlan(planID string, policy OveragePolicy) Selection {
	out := s.clone()
	out.PlanID = planID
	out.OverageMode = policy.OnPlanChange(s.OverageMode, planID)
	return out
}

// WithOverageMode returns a copy with the requested mode, or unchanged if the
// policy rejects it on the current plan.
func (s Selection) WithOverageMode(mode OverageMode, policy OveragePolicy) Selection {
	out := s.clone()
	out.OverageMode = policy.Transition(s.OverageMode, mode, s.PlanID)
	return out
}

// WithBillingCycle returns a copy with the given cycle.
func (s Selection) WithBillingCycle(cycle BillingCycle) Selection {
	out := s.clone()
	out.BillingCycle = cycle
	return out
}

func (s Selection) clone() Selection {
	out := s
	out.ActiveAddOnIDs = slices.Clone(s.ActiveAddOnIDs)
	return out
}

// surchargeApplies reports whether the payment method incurs the card surcharge.
func (s Selection) surchargeApplies() bool {
	return s.PaymentMethodType == PaymentMethodCard && s.CardIsDefault
}
