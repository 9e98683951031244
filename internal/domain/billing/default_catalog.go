package billing

// Plan IDs of the built-in catalog.
const (
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanScale      = "scale"
	PlanEnterprise = "enterprise"
)

func dollarsPtr(amount int64) *Money {
	m := Dollars(amount)
	return &m
}

// DefaultCatalog returns the built-in plan and add-on catalog.
func DefaultCatalog() *MemoryCatalog {
	plans := []*Plan{
		NewPlan(PlanParams{
			ID:                 PlanStarter,
			Name:               "Starter",
			Description:        "For teams validating a property data integration.",
			MonthlyPrice:       Dollars(500),
			AnnualMonthlyPrice: dollarsPtr(425),
			RecordAllowance:    10_000,
			Features: []string{
				"10,000 property records / month",
				"Property detail & search APIs",
				"Email support",
			},
		}),
		NewPlan(PlanParams{
			ID:                 PlanGrowth,
			Name:               "Growth",
			Description:        "For products in production with steady volume.",
			MonthlyPrice:       Dollars(1_200),
			AnnualMonthlyPrice: dollarsPtr(1_000),
			RecordAllowance:    50_000,
			Features: []string{
				"50,000 property records / month",
				"All Starter APIs",
				"Comparables & owner data",
				"Priority email support",
			},
		}),
		NewPlan(PlanParams{
			ID:                 PlanScale,
			Name:               "Scale",
			Description:        "For high-volume platforms.",
			MonthlyPrice:       Dollars(2_500),
			AnnualMonthlyPrice: dollarsPtr(2_100),
			RecordAllowance:    150_000,
			Features: []string{
				"150,000 property records / month",
				"All Growth APIs",
				"Bulk endpoints",
				"Dedicated success manager",
			},
		}),
		NewPlan(PlanParams{
			ID:              PlanEnterprise,
			Name:            "Enterprise",
			Description:     "Custom volume with contractual SLAs.",
			MonthlyPrice:    Dollars(5_000),
			RecordAllowance: 500_000,
			Features: []string{
				"500,000 property records / month",
				"All Scale APIs",
				"99.9% uptime SLA",
				"Named support engineer",
			},
		}),
	}

	addOns := []*AddOn{
		NewAddOn(AddOnParams{
			ID:          "premium-avm",
			Name:        "Premium AVM",
			Category:    "valuation",
			BillingType: AddOnBillingSubscription,
			PricesByPlan: map[string]AddOnPrice{
				PlanStarter:    FixedPrice(Dollars(250)),
				PlanGrowth:     FixedPrice(Dollars(500)),
				PlanScale:      FixedPrice(Dollars(900)),
				PlanEnterprise: FixedPrice(Dollars(1_500)),
			},
		}),
		NewAddOn(AddOnParams{
			ID:          "rental-estimates",
			Name:        "Rental Estimates",
			Category:    "valuation",
			BillingType: AddOnBillingSubscription,
			PricesByPlan: map[string]AddOnPrice{
				PlanGrowth:     FixedPrice(Dollars(300)),
				PlanScale:      FixedPrice(Dollars(550)),
				PlanEnterprise: FixedPrice(Dollars(900)),
			},
		}),
		NewAddOn(AddOnParams{
			ID:          "mortgage-data",
			Name:        "Mortgage & Lien Data",
			Category:    "ownership",
			BillingType: AddOnBillingSubscription,
			PricesByPlan: map[string]AddOnPrice{
				PlanStarter:    FixedPrice(Dollars(150)),
				PlanGrowth:     FixedPrice(Dollars(350)),
				PlanScale:      FixedPrice(Dollars(600)),
				PlanEnterprise: FixedPrice(Dollars(1_000)),
			},
		}),
		NewAddOn(AddOnParams{
			ID:          "skip-tracing",
			Name:        "Skip Tracing",
			Category:    "ownership",
			BillingType: AddOnBillingMetered,
			PricesByPlan: map[string]AddOnPrice{
				PlanStarter:    UsagePrice("$0.20/record"),
				PlanGrowth:     UsagePrice("$0.15/record"),
				PlanScale:      UsagePrice("$0.12/record"),
				PlanEnterprise: UsagePrice("$0.10/record"),
			},
		}),
	}

	catalog, err := NewCatalog(PlanStarter, plans, addOns)
	if err != nil {
		panic(err)
	}
	return catalog
}
