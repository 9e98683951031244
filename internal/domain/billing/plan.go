package billing

import "slices"

// Plan represents a subscription plan tier.
// Plan is a value object - it is looked up from the catalog by ID and never mutated.
type Plan struct {
	id                 string
	name               string
	description        string
	monthlyPrice       Money
	annualMonthlyPrice *Money // nil when the plan has no annual price
	recordAllowance    int64
	features           []string
}

// PlanParams holds the fields used to build a Plan.
type PlanParams struct {
	ID                 string
	Name               string
	Description        string
	MonthlyPrice       Money
	AnnualMonthlyPrice *Money
	RecordAllowance    int64
	Features           []string
}

// NewPlan creates a new Plan. Slices and pointers are copied.
func NewPlan(p PlanParams) *Plan {
	plan := &Plan{
		id:              p.ID,
		name:            p.Name,
		description:     p.Description,
		monthlyPrice:    p.MonthlyPrice,
		recordAllowance: p.RecordAllowance,
		features:        slices.Clone(p.Features),
	}
	if p.AnnualMonthlyPrice != nil {
		annual := *p.AnnualMonthlyPrice
		plan.annualMonthlyPrice = &annual
	}
	return plan
}

// ID returns the plan ID.
func (p *Plan) ID() string {
	return p.id
}

// Name returns the plan name.
func (p *Plan) Name() string {
	return p.name
}

// Description returns the plan description.
func (p *Plan) Description() string {
	return p.description
}

// MonthlyPrice returns the month-to-month price.
func (p *Plan) MonthlyPrice() Money {
	return p.monthlyPrice
}

// AnnualMonthlyPrice returns the per-month price on an annual contract.
// The second value is false when the plan has no annual price.
func (p *Plan) AnnualMonthlyPrice() (Money, bool) {
	if p.annualMonthlyPrice == nil {
		return ZeroMoney, false
	}
	return *p.annualMonthlyPrice, true
}

// PriceFor returns the base price for a billing cycle.
// Annual falls back to the monthly price when no annual price is defined.
func (p *Plan) PriceFor(cycle BillingCycle) Money {
	if cycle == BillingCycleAnnual {
		if annual, ok := p.AnnualMonthlyPrice(); ok {
			return annual
		}
	}
	return p.monthlyPrice
}

// RecordAllowance returns the number of records included per month.
func (p *Plan) RecordAllowance() int64 {
	return p.recordAllowance
}

// Features returns the plan features.
func (p *Plan) Features() []string {
	return slices.Clone(p.features)
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	return NewPlan(PlanParams{
		ID:                 p.id,
		Name:               p.name,
		Description:        p.description,
		MonthlyPrice:       p.monthlyPrice,
		AnnualMonthlyPrice: p.annualMonthlyPrice,
		RecordAllowance:    p.recordAllowance,
		Features:           p.features,
	})
}
