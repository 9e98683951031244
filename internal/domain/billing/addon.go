package billing

import "maps"

// AddOnPrice is an add-on's price on one plan: either a fixed monthly amount
// or a usage rate such as "$0.15/record" for metered add-ons.
type AddOnPrice struct {
	amount Money
	usage  string
}

// FixedPrice creates a fixed monthly add-on price.
func FixedPrice(amount Money) AddOnPrice {
	return AddOnPrice{amount: amount}
}

// UsagePrice creates a usage-rate add-on price.
func UsagePrice(rate string) AddOnPrice {
	return AddOnPrice{usage: rate}
}

// Amount returns the fixed monthly amount (zero for usage prices).
func (p AddOnPrice) Amount() Money {
	return p.amount
}

// Usage returns the usage rate text (empty for fixed prices).
func (p AddOnPrice) Usage() string {
	return p.usage
}

// IsUsage returns true if the price is a usage rate.
func (p AddOnPrice) IsUsage() bool {
	return p.usage != ""
}

// AddOn represents an optional product attached to a plan.
// AddOn is a value object - it is read from the catalog and never mutated.
type AddOn struct {
	id           string
	name         string
	category     string
	billingType  AddOnBillingType
	pricesByPlan map[string]AddOnPrice
}

// AddOnParams holds the fields used to build an AddOn.
type AddOnParams struct {
	ID           string
	Name         string
	Category     string
	BillingType  AddOnBillingType
	PricesByPlan map[string]AddOnPrice
}

// NewAddOn creates a new AddOn. The price map is copied.
func NewAddOn(p AddOnParams) *AddOn {
	return &AddOn{
		id:           p.ID,
		name:         p.Name,
		category:     p.Category,
		billingType:  p.BillingType,
		pricesByPlan: maps.Clone(p.PricesByPlan),
	}
}

// ID returns the add-on ID.
func (a *AddOn) ID() string {
	return a.id
}

// Name returns the add-on name.
func (a *AddOn) Name() string {
	return a.name
}

// Category returns the add-on category.
func (a *AddOn) Category() string {
	return a.category
}

// BillingType returns how the add-on is charged.
func (a *AddOn) BillingType() AddOnBillingType {
	return a.billingType
}

// PriceForPlan returns the add-on price on the given plan.
func (a *AddOn) PriceForPlan(planID string) (AddOnPrice, bool) {
	price, ok := a.pricesByPlan[planID]
	return price, ok
}

// PricesByPlan returns a copy of the per-plan prices.
func (a *AddOn) PricesByPlan() map[string]AddOnPrice {
	return maps.Clone(a.pricesByPlan)
}

// Clone returns a deep copy of the add-on.
func (a *AddOn) Clone() *AddOn {
	if a == nil {
		return nil
	}
	return NewAddOn(AddOnParams{
		ID:           a.id,
		Name:         a.name,
		Category:     a.category,
		BillingType:  a.billingType,
		PricesByPlan: a.pricesByPlan,
	})
}
