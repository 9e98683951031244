package billing

import (
	"fmt"
	"strconv"
)

// OverageMode is how usage beyond the plan's record allowance is handled.
type OverageMode string

const (
	OverageCutOff    OverageMode = "cut_off"
	OverageAllow25   OverageMode = "allow_25"
	OverageAllow100  OverageMode = "allow_100"
	OverageUnlimited OverageMode = "unlimited"
)

// DefaultOverageMode is the mode used when no prior selection exists.
const DefaultOverageMode = OverageCutOff

// String returns the string representation of the overage mode.
func (m OverageMode) String() string {
	return string(m)
}

// IsValid checks if the overage mode is valid.
func (m OverageMode) IsValid() bool {
	switch m {
	case OverageCutOff, OverageAllow25, OverageAllow100, OverageUnlimited:
		return true
	}
	return false
}

// Cap returns the maximum number of records served per month for an allowance.
// The second value is false when usage is not capped.
func (m OverageMode) Cap(allowance int64) (int64, bool) {
	switch m {
	case OverageAllow25:
		return allowance + allowance/4, true
	case OverageAllow100:
		return allowance * 2, true
	case OverageUnlimited:
		return 0, false
	default:
		return allowance, true
	}
}

// OveragePolicy guards overage mode selection by plan tier.
// Unlimited overage is not offered on the entry tier.
type OveragePolicy struct {
	entryTier string
}

// NewOveragePolicy creates a policy for the catalog's entry tier.
func NewOveragePolicy(catalog Catalog) OveragePolicy {
	return OveragePolicy{entryTier: catalog.EntryTierID()}
}

// EntryTierID returns the plan ID on which unlimited overage is unavailable.
func (p OveragePolicy) EntryTierID() string {
	return p.entryTier
}

// CanSelectOverageMode reports whether mode may be selected on planID.
func (p OveragePolicy) CanSelectOverageMode(mode OverageMode, planID string) bool {
	if !mode.IsValid() {
		return false
	}
	if mode == OverageUnlimited && planID == p.entryTier {
		return false
	}
	return true
}

// Transition returns the mode after a requested change on planID.
// A rejected request leaves the current mode unchanged.
func (p OveragePolicy) Transition(current, requested OverageMode, planID string) OverageMode {
	if !p.CanSelectOverageMode(requested, planID) {
		return current
	}
	return requested
}

// OnPlanChange returns the mode after the active plan changes to newPlanID.
// Unlimited is reset to cut-off when moving to the entry tier.
func (p OveragePolicy) OnPlanChange(current OverageMode, newPlanID string) OverageMode {
	if current == OverageUnlimited && newPlanID == p.entryTier {
		return OverageCutOff
	}
	if !current.IsValid() {
		return DefaultOverageMode
	}
	return current
}

// AvailableModes returns the modes selectable on planID.
func (p OveragePolicy) AvailableModes(planID string) []OverageMode {
	out := make([]OverageMode, 0, 4)
	for _, m := range []OverageMode{OverageCutOff, OverageAllow25, OverageAllow100, OverageUnlimited} {
		if p.CanSelectOverageMode(m, planID) {
			out = append(out, m)
		}
	}
	return out
}

// PolicyText describes how overage is handled for a plan and mode.
func PolicyText(plan *Plan, mode OverageMode) string {
	allowance := formatCount(plan.RecordAllowance())
	switch mode {
	case OverageAllow25:
		limit, _ := mode.Cap(plan.RecordAllowance())
		return fmt.Sprintf("Usage beyond %s records is billed at your overage rate, up to %s records (125%% of your allowance).", allowance, formatCount(limit))
	case OverageAllow100:
		limit, _ := mode.Cap(plan.RecordAllowance())
		return fmt.Sprintf("Usage beyond %s records is billed at your overage rate, up to %s records (200%% of your allowance).", allowance, formatCount(limit))
	case OverageUnlimited:
		return fmt.Sprintf("Usage beyond %s records is billed at your overage rate with no cap.", allowance)
	default:
		return fmt.Sprintf("API access pauses once %s records are used until the next billing period.", allowance)
	}
}

func formatCount(n int64) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	return groupThousands(n)
}

// ParseOverageMode parses an overage mode string.
func ParseOverageMode(s string) (OverageMode, error) {
	m := OverageMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidOverageMode, strconv.Quote(s))
	}
	return m, nil
}
