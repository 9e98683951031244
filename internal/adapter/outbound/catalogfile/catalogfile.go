// Package catalogfile loads the plan and add-on catalog from a YAML file.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parcelapi/planengine/internal/domain/billing"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	EntryTier string       `yaml:"entry_tier"`
	Plans     []planEntry  `yaml:"plans"`
	AddOns    []addOnEntry `yaml:"addons"`
}

type planEntry struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	MonthlyPrice       string   `yaml:"monthly_price"`
	AnnualMonthlyPrice string   `yaml:"annual_monthly_price"`
	RecordAllowance    int64    `yaml:"record_allowance"`
	Features           []string `yaml:"features"`
}

type addOnEntry struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Category    string                `yaml:"category"`
	BillingType string                `yaml:"billing_type"`
	Prices      map[string]priceEntry `yaml:"prices"`
}

type priceEntry struct {
	Amount string `yaml:"amount"`
	Usage  string `yaml:"usage"`
}

var hundred = decimal.NewFromInt(100)

// Load reads and parses the catalog file at path.
func Load(path string) (*billing.MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Parse builds a catalog from YAML. Unknown fields are rejected.
func Parse(data []byte) (*billing.MemoryCatalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog", billing.ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", billing.ErrInvalidCatalog, err)
	}

	plans := make([]*billing.Plan, 0, len(file.Plans))
	planIDs := make(map[string]struct{}, len(file.Plans))
	for _, p := range file.Plans {
		plan, err := p.toPlan()
		if err != nil {
			return nil, fmt.Errorf("%w: plan %q: %v", billing.ErrInvalidCatalog, p.ID, err)
		}
		plans = append(plans, plan)
		planIDs[p.ID] = struct{}{}
	}

	addOns := make([]*billing.AddOn, 0, len(file.AddOns))
	for _, a := range file.AddOns {
		addOn, err := a.toAddOn(planIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: add-on %q: %v", billing.ErrInvalidCatalog, a.ID, err)
		}
		addOns = append(addOns, addOn)
	}

	return billing.NewCatalog(file.EntryTier, plans, addOns)
}

func (p planEntry) toPlan() (*billing.Plan, error) {
	if p.ID == "" {
		return nil, errors.New("id is required")
	}
	if p.RecordAllowance < 0 {
		return nil, errors.New("record_allowance must not be negative")
	}

	monthly, err := parseMoney(p.MonthlyPrice)
	if err != nil {
		return nil, fmt.Errorf("monthly_price: %w", err)
	}

	params := billing.PlanParams{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		MonthlyPrice:    monthly,
		RecordAllowance: p.RecordAllowance,
		Features:        p.Features,
	}
	if p.AnnualMonthlyPrice != "" {
		annual, err := parseMoney(p.AnnualMonthlyPrice)
		if err != nil {
			return nil, fmt.Errorf("annual_monthly_price: %w", err)
		}
		params.AnnualMonthlyPrice = &annual
	}
	return billing.NewPlan(params), nil
}

func (a addOnEntry) toAddOn(planIDs map[string]struct{}) (*billing.AddOn, error) {
	if a.ID == "" {
		return nil, errors.New("id is required")
	}

	billingType := billing.AddOnBillingType(a.BillingType)
	if billingType == "" {
		billingType = billing.AddOnBillingSubscription
	}
	if !billingType.IsValid() {
		return nil, fmt.Errorf("unknown billing_type %q", a.BillingType)
	}

	prices := make(map[string]billing.AddOnPrice, len(a.Prices))
	for planID, entry := range a.Prices {
		if _, ok := planIDs[planID]; !ok {
			return nil, fmt.Errorf("price for unknown plan %q", planID)
		}
		price, err := entry.toPrice()
		if err != nil {
			return nil, fmt.Errorf("price for %q: %w", planID, err)
		}
		prices[planID] = price
	}

	return billing.NewAddOn(billing.AddOnParams{
		ID:           a.ID,
		Name:         a.Name,
		Category:     a.Category,
		BillingType:  billingType,
		PricesByPlan: prices,
	}), nil
}

func (e priceEntry) toPrice() (billing.AddOnPrice, error) {
	switch {
	case e.Amount != "" && e.Usage != "":
		return billing.AddOnPrice{}, errors.New("amount and usage are mutually exclusive")
	case e.Usage != "":
		return billing.UsagePrice(e.Usage), nil
	case e.Amount != "":
		amount, err := parseMoney(e.Amount)
		if err != nil {
			return billing.AddOnPrice{}, err
		}
		return billing.FixedPrice(amount), nil
	default:
		return billing.AddOnPrice{}, errors.New("amount or usage is required")
	}
}

// parseMoney parses a dollar amount such as "1200" or "19.99".
func parseMoney(s string) (billing.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return billing.ZeroMoney, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return billing.ZeroMoney, fmt.Errorf("amount %q must not be negative", s)
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return billing.ZeroMoney, fmt.Errorf("amount %q has fractional cents", s)
	}
	return billing.Cents(cents.IntPart()), nil
}
