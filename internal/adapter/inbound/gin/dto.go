package gin

import (
	"time"

	"github.com/google/uuid"
	"github.com/parcelapi/planengine/internal/domain/billing"
)

const dateLayout = "2006-01-02"

// ===== Requests =====

// SelectionRequest is a selection as sent by clients. Omitted fields take the
// values of billing.DefaultSelection.
type SelectionRequest struct {
	PlanID            string   `json:"plan_id" binding:"required"`
	BillingCycle      string   `json:"billing_cycle"`
	ActiveAddOnIDs    []string `json:"active_add_on_ids"`
	OverageMode       string   `json:"overage_mode"`
	PaymentMethodType string   `json:"payment_method_type"`
	CardIsDefault     *bool    `json:"card_is_default"`
}

// ToSelection converts the request to a domain selection.
func (r SelectionRequest) ToSelection() billing.Selection {
	sel := billing.DefaultSelection(r.PlanID)
	if r.BillingCycle != "" {
		sel.BillingCycle = billing.BillingCycle(r.BillingCycle)
	}
	if r.OverageMode != "" {
		sel.OverageMode = billing.OverageMode(r.OverageMode)
	}
	if r.PaymentMethodType != "" {
		sel.PaymentMethodType = billing.PaymentMethodType(r.PaymentMethodType)
	}
	if r.CardIsDefault != nil {
		sel.CardIsDefault = *r.CardIsDefault
	}
	sel.ActiveAddOnIDs = r.ActiveAddOnIDs
	return sel
}

// QuoteRequest is the body of POST /quotes.
type QuoteRequest struct {
	Selection SelectionRequest `json:"selection" binding:"required"`
	// ContractStart is a YYYY-MM-DD date; empty means the contract starts today.
	ContractStart string `json:"contract_start"`
}

// TerminationFeeRequest is the body of POST /termination-fee.
// The monthly total is taken from MonthlyTotalCents, or computed from Selection when set.
type TerminationFeeRequest struct {
	MonthlyTotalCents int64             `json:"monthly_total_cents" binding:"min=0"`
	Selection         *SelectionRequest `json:"selection"`
	BillingCycle      string            `json:"billing_cycle" binding:"required"`
	ContractStart     string            `json:"contract_start" binding:"required"`
}

// OverageCheckRequest is the body of POST /overage/check.
type OverageCheckRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	CurrentMode   string `json:"current_mode"`
	RequestedMode string `json:"requested_mode" binding:"required"`
}

// StartSessionRequest is the body of POST /sessions.
type StartSessionRequest struct {
	PlanID      string   `json:"plan_id" binding:"required"`
	AddOnIDs    []string `json:"add_on_ids"`
	OverageMode string   `json:"overage_mode"`
}

// ===== Responses =====

// MoneyResponse carries an amount in cents and its display form.
type MoneyResponse struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

func toMoney(m billing.Money) MoneyResponse {
	return MoneyResponse{Cents: m.Cents(), Display: m.Format()}
}

// PlanResponse represents a plan in API responses.
type PlanResponse struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	MonthlyPrice       MoneyResponse  `json:"monthly_price"`
	AnnualMonthlyPrice *MoneyResponse `json:"annual_monthly_price,omitempty"`
	RecordAllowance    int64          `json:"record_allowance"`
	Features           []string       `json:"features"`
	OverageModes       []string       `json:"overage_modes"`
}

func toPlanResponse(p *billing.Plan, policy billing.OveragePolicy) PlanResponse {
	resp := PlanResponse{
		ID:              p.ID(),
		Name:            p.Name(),
		Description:     p.Description(),
		MonthlyPrice:    toMoney(p.MonthlyPrice()),
		RecordAllowance: p.RecordAllowance(),
		Features:        p.Features(),
		OverageModes:    modeStrings(policy.AvailableModes(p.ID())),
	}
	if annual, ok := p.AnnualMonthlyPrice(); ok {
		m := toMoney(annual)
		resp.AnnualMonthlyPrice = &m
	}
	return resp
}

// AddOnPriceResponse is the price of an add-on on one plan.
// Exactly one of Amount and Usage is set.
type AddOnPriceResponse struct {
	Amount *MoneyResponse `json:"amount,omitempty"`
	Usage  string         `json:"usage,omitempty"`
}

// AddOnResponse represents an add-on in API responses.
type AddOnResponse struct {
	ID          string                        `json:"id"`
	Name        string                        `json:"name"`
	Category    string                        `json:"category"`
	BillingType string                        `json:"billing_type"`
	Prices      map[string]AddOnPriceResponse `json:"prices"`
}

func toAddOnResponse(a *billing.AddOn) AddOnResponse {
	prices := make(map[string]AddOnPriceResponse, len(a.PricesByPlan()))
	for planID, p := range a.PricesByPlan() {
		if p.IsUsage() {
			prices[planID] = AddOnPriceResponse{Usage: p.Usage()}
			continue
		}
		m := toMoney(p.Amount())
		prices[planID] = AddOnPriceResponse{Amount: &m}
	}
	return AddOnResponse{
		ID:          a.ID(),
		Name:        a.Name(),
		Category:    a.Category(),
		BillingType: string(a.BillingType()),
		Prices:      prices,
	}
}

// SelectionResponse represents a selection in API responses.
type SelectionResponse struct {
	PlanID            string   `json:"plan_id"`
	BillingCycle      string   `json:"billing_cycle"`
	ActiveAddOnIDs    []string `json:"active_add_on_ids"`
	OverageMode       string   `json:"overage_mode"`
	PaymentMethodType string   `json:"payment_method_type"`
	CardIsDefault     bool     `json:"card_is_default"`
}

func toSelectionResponse(sel billing.Selection) SelectionResponse {
	ids := sel.AddOnIDs()
	if ids == nil {
		ids = []string{}
	}
	return SelectionResponse{
		PlanID:            sel.PlanID,
		BillingCycle:      sel.BillingCycle.String(),
		ActiveAddOnIDs:    ids,
		OverageMode:       sel.OverageMode.String(),
		PaymentMethodType: sel.PaymentMethodType.String(),
		CardIsDefault:     sel.CardIsDefault,
	}
}

// AddOnLineResponse is one priced add-on of a cost breakdown.
type AddOnLineResponse struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Amount MoneyResponse `json:"amount"`
	Usage  string        `json:"usage,omitempty"`
}

// CostsResponse is the recurring monthly cost of a selection.
type CostsResponse struct {
	BasePrice       MoneyResponse       `json:"base_price"`
	AddOnSubtotal   MoneyResponse       `json:"add_on_subtotal"`
	Subtotal        MoneyResponse       `json:"subtotal"`
	Surcharge       MoneyResponse       `json:"surcharge"`
	Total           MoneyResponse       `json:"total"`
	AddOns          []AddOnLineResponse `json:"add_ons"`
	SkippedAddOnIDs []string            `json:"skipped_add_on_ids,omitempty"`
}

func toCostsResponse(c *billing.CostBreakdown) CostsResponse {
	lines := make([]AddOnLineResponse, len(c.AddOns))
	for i, l := range c.AddOns {
		lines[i] = AddOnLineResponse{
			ID:     l.ID,
			Name:   l.Name,
			Amount: toMoney(l.Amount),
			Usage:  l.Usage,
		}
	}
	return CostsResponse{
		BasePrice:       toMoney(c.BasePrice),
		AddOnSubtotal:   toMoney(c.AddOnSubtotal),
		Subtotal:        toMoney(c.Subtotal),
		Surcharge:       toMoney(c.Surcharge),
		Total:           toMoney(c.Total),
		AddOns:          lines,
		SkippedAddOnIDs: c.SkippedAddOnIDs,
	}
}

// FirstInvoiceResponse is the prorated first charge.
type FirstInvoiceResponse struct {
	BillingCycle         string        `json:"billing_cycle"`
	ProratedAmount       MoneyResponse `json:"prorated_amount"`
	FirstFullBillingDate string        `json:"first_full_billing_date"`
	RemainingDays        int           `json:"remaining_days"`
	DaysInMonth          int           `json:"days_in_month"`
}

func toFirstInvoiceResponse(f billing.FirstInvoice) FirstInvoiceResponse {
	return FirstInvoiceResponse{
		BillingCycle:         f.BillingCycle.String(),
		ProratedAmount:       toMoney(f.ProratedAmount),
		FirstFullBillingDate: f.FirstFullBillingDate.Format(dateLayout),
		RemainingDays:        f.RemainingDays,
		DaysInMonth:          f.DaysInMonth,
	}
}

// TerminationResponse describes the cost of ending an annual contract early.
type TerminationResponse struct {
	ContractStart          string        `json:"contract_start"`
	ContractEnd            string        `json:"contract_end"`
	MonthsCompleted        int           `json:"months_completed"`
	RemainingMonths        int           `json:"remaining_months"`
	RemainingContractValue MoneyResponse `json:"remaining_contract_value"`
	// EarlyTerminationFeeCents is the exact fee and may end in ".5".
	EarlyTerminationFeeCents string        `json:"early_termination_fee_cents"`
	FeeDue                   MoneyResponse `json:"fee_due"`
}

func toTerminationResponse(t *billing.TerminationInfo) *TerminationResponse {
	if t == nil {
		return nil
	}
	return &TerminationResponse{
		ContractStart:            t.ContractStart.Format(dateLayout),
		ContractEnd:              t.ContractEnd.Format(dateLayout),
		MonthsCompleted:          t.MonthsCompleted,
		RemainingMonths:          t.RemainingMonths,
		RemainingContractValue:   toMoney(t.RemainingContractValue),
		EarlyTerminationFeeCents: t.EarlyTerminationFee.String(),
		FeeDue:                   toMoney(t.FeeDue()),
	}
}

// QuoteResponse is the confirmation summary of a selection.
type QuoteResponse struct {
	Selection     SelectionResponse    `json:"selection"`
	PlanName      string               `json:"plan_name"`
	Costs         CostsResponse        `json:"costs"`
	FirstInvoice  FirstInvoiceResponse `json:"first_invoice"`
	Termination   *TerminationResponse `json:"termination"`
	OveragePolicy string               `json:"overage_policy"`
	OverageModes  []string             `json:"overage_modes"`
	RenewalDate   string               `json:"renewal_date"`
	QuotedAt      time.Time            `json:"quoted_at"`
}

func toQuoteResponse(q *billing.Quote) QuoteResponse {
	return QuoteResponse{
		Selection:     toSelectionResponse(q.Selection),
		PlanName:      q.Plan.Name(),
		Costs:         toCostsResponse(q.Costs),
		FirstInvoice:  toFirstInvoiceResponse(q.FirstInvoice),
		Termination:   toTerminationResponse(q.Termination),
		OveragePolicy: q.OveragePolicy,
		OverageModes:  modeStrings(q.OverageModes),
		RenewalDate:   q.RenewalDate.Format(dateLayout),
		QuotedAt:      q.QuotedAt,
	}
}

// OverageCheckResponse is the outcome of an overage mode request.
type OverageCheckResponse struct {
	Allowed        bool     `json:"allowed"`
	OverageMode    string   `json:"overage_mode"`
	AvailableModes []string `json:"available_modes"`
	Policy         string   `json:"policy"`
}

// SnapshotResponse is one side of a session.
type SnapshotResponse struct {
	PlanID      string   `json:"plan_id"`
	PlanName    string   `json:"plan_name"`
	AddOnIDs    []string `json:"add_on_ids"`
	OverageMode string   `json:"overage_mode"`
}

func toSnapshotResponse(s *billing.SubscriptionSnapshot) SnapshotResponse {
	ids := s.AddOnIDs()
	if ids == nil {
		ids = []string{}
	}
	return SnapshotResponse{
		PlanID:      s.PlanID(),
		PlanName:    s.Plan().Name(),
		AddOnIDs:    ids,
		OverageMode: s.OverageMode().String(),
	}
}

// ChangesResponse describes how the proposal differs from the original.
type ChangesResponse struct {
	HasAnyChanges      bool     `json:"has_any_changes"`
	PlanChanged        bool     `json:"plan_changed"`
	AddOnsChanged      bool     `json:"add_ons_changed"`
	OverageModeChanged bool     `json:"overage_mode_changed"`
	FromPlanID         string   `json:"from_plan_id"`
	ToPlanID           string   `json:"to_plan_id"`
	AddedAddOnIDs      []string `json:"added_add_on_ids,omitempty"`
	RemovedAddOnIDs    []string `json:"removed_add_on_ids,omitempty"`
	FromOverageMode    string   `json:"from_overage_mode"`
	ToOverageMode      string   `json:"to_overage_mode"`
}

// SessionResponse represents a plan-change session in API responses.
type SessionResponse struct {
	ID        uuid.UUID        `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Original  SnapshotResponse `json:"original"`
	Proposed  SnapshotResponse `json:"proposed"`
	Changes   ChangesResponse  `json:"changes"`
}

func toSessionResponse(s *billing.SessionState) SessionResponse {
	c := s.Changes
	return SessionResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Original:  toSnapshotResponse(s.Original),
		Proposed:  toSnapshotResponse(s.Proposed),
		Changes: ChangesResponse{
			HasAnyChanges:      c.HasAnyChanges(),
			PlanChanged:        c.PlanChanged,
			AddOnsChanged:      c.AddOnsChanged,
			OverageModeChanged: c.OverageModeChanged,
			FromPlanID:         c.FromPlanID,
			ToPlanID:           c.ToPlanID,
			AddedAddOnIDs:      c.AddedAddOnIDs,
			RemovedAddOnIDs:    c.RemovedAddOnIDs,
			FromOverageMode:    c.FromOverageMode.String(),
			ToOverageMode:      c.ToOverageMode.String(),
		},
	}
}

func modeStrings(modes []billing.OverageMode) []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = m.String()
	}
	return out
}
