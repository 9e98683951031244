package billing

import (
	"fmt"
	"slices"
)

// Catalog is the read-only source of plan and add-on definitions.
type Catalog interface {
	// Plan returns the plan with the given ID or ErrUnknownPlan.
	Plan(id string) (*Plan, error)

	// AddOn returns the add-on with the given ID or ErrAddOnNotFound.
	AddOn(id string) (*AddOn, error)

	// AddOnPriceForPlan returns the add-on's price on a plan.
	AddOnPriceForPlan(addOnID, planID string) (AddOnPrice, error)

	// EntryTierID returns the ID of the lowest plan tier.
	EntryTierID() string

	// Plans returns all plans in display order.
	Plans() []*Plan

	// AddOns returns all add-ons in display order.
	AddOns() []*AddOn
}

// MemoryCatalog is an in-memory Catalog.
// Inputs are deep-copied on construction and results are copies, so callers
// cannot modify the catalog's state.
type MemoryCatalog struct {
	entryTier  string
	plans      map[string]*Plan
	addOns     map[string]*AddOn
	planOrder  []string
	addOnOrder []string
}

// NewCatalog creates a MemoryCatalog. The entry tier must name one of the plans
// and IDs must be unique.
func NewCatalog(entryTier string, plans []*Plan, addOns []*AddOn) (*MemoryCatalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: at least one plan is required", ErrInvalidCatalog)
	}

	c := &MemoryCatalog{
		entryTier: entryTier,
		plans:     make(map[string]*Plan, len(plans)),
		addOns:    make(map[string]*AddOn, len(addOns)),
	}

	for _, p := range plans {
		if p == nil || p.ID() == "" {
			return nil, fmt.Errorf("%w: plan without ID", ErrInvalidCatalog)
		}
		if _, dup := c.plans[p.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, p.ID())
		}
		c.plans[p.ID()] = p.Clone()
		c.planOrder = append(c.planOrder, p.ID())
	}

	if _, ok := c.plans[entryTier]; !ok {
		return nil, fmt.Errorf("%w: entry tier %q is not a plan", ErrInvalidCatalog, entryTier)
	}

	for _, a := range addOns {
		if a == nil || a.ID() == "" {
			return nil, fmt.Errorf("%w: add-on without ID", ErrInvalidCatalog)
		}
		if _, dup := c.addOns[a.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate add-on %q", ErrInvalidCatalog, a.ID())
		}
		c.addOns[a.ID()] = a.Clone()
		c.addOnOrder = append(c.addOnOrder, a.ID())
	}

	return c, nil
}

// Compile-time interface check
var _ Catalog = (*MemoryCatalog)(nil)

func (c *MemoryCatalog) Plan(id string) (*Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return p.Clone(), nil
}

func (c *MemoryCatalog) AddOn(id string) (*AddOn, error) {
	a, ok := c.addOns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAddOnNotFound, id)
	}
	return a.Clone(), nil
}

func (c *MemoryCatalog) AddOnPriceForPlan(addOnID, planID string) (AddOnPrice, error) {
	a, ok := c.addOns[addOnID]
	if !ok {
		return AddOnPrice{}, fmt.Errorf("%w: %q", ErrAddOnNotFound, addOnID)
	}
	price, ok := a.PriceForPlan(planID)
	if !ok {
		return AddOnPrice{}, fmt.Errorf("%w: %q on %q", ErrNoPriceForPlan, addOnID, planID)
	}
	return price, nil
}

func (c *MemoryCatalog) EntryTierID() string {
	return c.entryTier
}

func (c *MemoryCatalog) Plans() []*Plan {
	out := make([]*Plan, 0, len(c.planOrder))
	for _, id := range c.planOrder {
		out = append(out, c.plans[id].Clone())
	}
	return out
}

func (c *MemoryCatalog) AddOns() []*AddOn {
	out := make([]*AddOn, 0, len(c.addOnOrder))
	for _, id := range c.addOnOrder {
		out = append(out, c.addOns[id].Clone())
	}
	return out
}

// AddOnsAvailableOn returns the add-ons priced on the given plan, in display order.
func (c *MemoryCatalog) AddOnsAvailableOn(planID string) []*AddOn {
	var out []*AddOn
	for _, id := range c.addOnOrder {
		if _, ok := c.addOns[id].PriceForPlan(planID); ok {
			out = append(out, c.addOns[id].Clone())
		}
	}
	return out
}

// PlanIDs returns the plan IDs in display order.
func (c *MemoryCatalog) PlanIDs() []string {
	return slices.Clone(c.planOrder)
}
