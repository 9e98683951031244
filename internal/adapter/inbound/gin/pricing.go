package gin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/domain/billing"
	"github.com/parcelapi/planengine/internal/port/inbound"
	apperrors "github.com/parcelapi/planengine/internal/utils/errors"
	"github.com/parcelapi/planengine/internal/utils/metrics"
	"go.uber.org/zap"
)

// pricingHandler implements inbound.PricingHttpPort.
type pricingHandler struct {
	domain  inbound.PlanChangeDomain
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPricingHandler creates a new catalog and pricing HTTP handler.
// m may be nil.
func NewPricingHandler(domain inbound.PlanChangeDomain, m *metrics.Metrics, logger *zap.Logger) inbound.PricingHttpPort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pricingHandler{domain: domain, metrics: m, logger: logger}
}

func (h *pricingHandler) ListPlans(c *gin.Context) {
	policy := h.domain.Policy()
	plans := h.domain.Plans()

	response := make([]PlanResponse, len(plans))
	for i, p := range plans {
		response[i] = toPlanResponse(p, policy)
	}
	c.JSON(http.StatusOK, gin.H{"plans": response})
}

func (h *pricingHandler) GetPlan(c *gin.Context) {
	plan, err := h.domain.Plan(c.Param("id"))
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			c.JSON(http.StatusNotFound, apperrors.NotFound("plan").ToResponse())
			return
		}
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toPlanResponse(plan, h.domain.Policy()))
}

func (h *pricingHandler) ListAddOns(c *gin.Context) {
	addOns := h.domain.AddOns()

	response := make([]AddOnResponse, len(addOns))
	for i, a := range addOns {
		response[i] = toAddOnResponse(a)
	}
	c.JSON(http.StatusOK, gin.H{"add_ons": response})
}

func (h *pricingHandler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	var start *time.Time
	if req.ContractStart != "" {
		t, err := parseDate(req.ContractStart)
		if err != nil {
			abortBadRequest(c, err.Error())
			return
		}
		start = &t
	}

	quote, err := h.domain.Quote(req.Selection.ToSelection(), start)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if h.metrics != nil {
		total, _ := quote.Costs.Total.Decimal().Shift(-2).Float64()
		h.metrics.RecordQuote(quote.Plan.ID(), quote.Selection.BillingCycle.String(), total)
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

func (h *pricingHandler) TerminationFee(c *gin.Context) {
	var req TerminationFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	cycle := billing.BillingCycle(req.BillingCycle)
	if !cycle.IsValid() {
		handleError(c, h.logger, billing.ErrInvalidBillingCycle)
		return
	}
	start, err := parseDate(req.ContractStart)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	monthly := billing.Cents(req.MonthlyTotalCents)
	if req.Selection != nil {
		sel := req.Selection.ToSelection()
		sel.BillingCycle = cycle
		if err := sel.Validate(); err != nil {
			handleError(c, h.logger, err)
			return
		}
		costs, err := h.domain.ComputeCosts(sel, cycle)
		if err != nil {
			handleError(c, h.logger, err)
			return
		}
		monthly = costs.Total
	}

	info := h.domain.ComputeEarlyTerminationFee(monthly, cycle, start)
	c.JSON(http.StatusOK, gin.H{
		"applies":       info != nil,
		"monthly_total": toMoney(monthly),
		"termination":   toTerminationResponse(info),
	})
}

func (h *pricingHandler) CheckOverage(c *gin.Context) {
	var req OverageCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	plan, err := h.domain.Plan(req.PlanID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	requested, err := billing.ParseOverageMode(req.RequestedMode)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	current := billing.DefaultOverageMode
	if req.CurrentMode != "" {
		if current, err = billing.ParseOverageMode(req.CurrentMode); err != nil {
			handleError(c, h.logger, err)
			return
		}
	}

	policy := h.domain.Policy()
	mode := policy.Transition(current, requested, plan.ID())

	c.JSON(http.StatusOK, OverageCheckResponse{
		Allowed:        h.domain.CanSelectOverageMode(requested, plan.ID()),
		OverageMode:    mode.String(),
		AvailableModes: modeStrings(policy.AvailableModes(plan.ID())),
		Policy:         billing.PolicyText(plan, mode),
	})
}
