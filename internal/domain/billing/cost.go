package billing

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSurchargeBasisPoints is the card surcharge rate (3%).
const DefaultSurchargeBasisPoints = 300

// CostBreakdown is the recurring monthly cost of a selection.
type CostBreakdown struct {
	BasePrice     Money
	AddOnSubtotal Money
	Subtotal      Money
	Surcharge     Money
	Total         Money

	// AddOns lists the add-ons included in the subtotal.
	AddOns []AddOnLine
	// SkippedAddOnIDs lists selected add-ons that are missing from the catalog
	// or have no price on the plan.
	SkippedAddOnIDs []string
}

// AddOnLine is one priced add-on of a breakdown.
type AddOnLine struct {
	ID     string
	Name   string
	Amount Money
	Usage  string // usage rate for metered add-ons; Amount is zero
}

// CostCalculator derives recurring costs from a selection.
type CostCalculator struct {
	catalog       Catalog
	surchargeRate decimal.Decimal
	logger        *zap.Logger
}

// NewCostCalculator creates a cost calculator.
// A non-positive surchargeBasisPoints falls back to DefaultSurchargeBasisPoints.
func NewCostCalculator(catalog Catalog, surchargeBasisPoints int64, logger *zap.Logger) *CostCalculator {
	if surchargeBasisPoints <= 0 {
		surchargeBasisPoints = DefaultSurchargeBasisPoints
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostCalculator{
		catalog:       catalog,
		surchargeRate: decimal.New(surchargeBasisPoints, -4),
		logger:        logger,
	}
}

// ComputeCosts computes costs with the default surcharge rate.
func ComputeCosts(catalog Catalog, sel Selection, cycle BillingCycle) (*CostBreakdown, error) {
	return NewCostCalculator(catalog, DefaultSurchargeBasisPoints, nil).ComputeCosts(sel, cycle)
}

// ComputeCosts returns the cost breakdown of sel on the given billing cycle.
// An unknown plan fails the whole computation; stale add-ons are skipped.
func (c *CostCalculator) ComputeCosts(sel Selection, cycle BillingCycle) (*CostBreakdown, error) {
	plan, err := c.catalog.Plan(sel.PlanID)
	if err != nil {
		return nil, err
	}

	if cycle == BillingCycleAnnual {
		if _, ok := plan.AnnualMonthlyPrice(); !ok {
			c.logger.Debug("no annual price, using monthly price", zap.String("plan_id", plan.ID()))
		}
	}

	out := &CostBreakdown{BasePrice: plan.PriceFor(cycle)}

	for _, id := range sel.AddOnIDs() {
		line, ok := c.addOnLine(id, plan.ID())
		if !ok {
			out.SkippedAddOnIDs = append(out.SkippedAddOnIDs, id)
			continue
		}
		out.AddOns = append(out.AddOns, line)
		out.AddOnSubtotal = out.AddOnSubtotal.Add(line.Amount)
	}

	out.Subtotal = out.BasePrice.Add(out.AddOnSubtotal)
	if sel.surchargeApplies() {
		out.Surcharge = c.Surcharge(out.Subtotal)
	}
	out.Total = out.Subtotal.Add(out.Surcharge)

	if len(out.SkippedAddOnIDs) > 0 {
		c.logger.Info("skipped stale add-ons",
			zap.String("plan_id", plan.ID()),
			zap.Strings("add_on_ids", out.SkippedAddOnIDs),
		)
	}
	c.logger.Debug("costs computed",
		zap.String("plan_id", plan.ID()),
		zap.String("billing_cycle", cycle.String()),
		zap.Int64("total_cents", out.Total.Cents()),
	)

	return out, nil
}

// Surcharge returns the card surcharge on subtotal, rounded half-to-even to the cent.
func (c *CostCalculator) Surcharge(subtotal Money) Money {
	return moneyFromDecimal(subtotal.Decimal().Mul(c.surchargeRate))
}

func (c *CostCalculator) addOnLine(addOnID, planID string) (AddOnLine, bool) {
	addOn, err := c.catalog.AddOn(addOnID)
	if err != nil {
		return AddOnLine{}, false
	}
	price, err := c.catalog.AddOnPriceForPlan(addOnID, planID)
	if err != nil {
		if !errors.Is(err, ErrNoPriceForPlan) {
			c.logger.Warn("add-on price lookup failed", zap.String("add_on_id", addOnID), zap.Error(err))
		}
		return AddOnLine{}, false
	}
	return AddOnLine{
		ID:     addOn.ID(),
		Name:   addOn.Name(),
		Amount: price.Amount(),
		Usage:  price.Usage(),
	}, true
}
