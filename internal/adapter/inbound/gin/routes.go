package gin

import (
	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/port/inbound"
	"github.com/parcelapi/planengine/internal/utils/metrics"
	"go.uber.org/zap"
)

// Handlers holds all plan-change HTTP handlers.
type Handlers struct {
	Pricing   inbound.PricingHttpPort
	Session   inbound.SessionHttpPort
	Selection inbound.SelectionHttpPort
}

// NewHandlers creates all plan-change HTTP handlers.
func NewHandlers(domain inbound.PlanChangeDomain, m *metrics.Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		Pricing:   NewPricingHandler(domain, m, logger),
		Session:   NewSessionHandler(domain, m, logger),
		Selection: NewSelectionHandler(domain, logger),
	}
}

// RegisterRoutes registers all plan-change routes on r.
// pricing is applied to the calculation endpoints only (e.g. rate limiting).
func (h *Handlers) RegisterRoutes(r *gin.RouterGroup, pricing ...gin.HandlerFunc) {
	r.GET("/plans", h.Pricing.ListPlans)
	r.GET("/plans/:id", h.Pricing.GetPlan)
	r.GET("/addons", h.Pricing.ListAddOns)

	calc := r.Group("", pricing...)
	{
		calc.POST("/quotes", h.Pricing.CreateQuote)
		calc.POST("/termination-fee", h.Pricing.TerminationFee)
		calc.POST("/overage/check", h.Pricing.CheckOverage)
	}

	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.Session.StartSession)
		sessions.GET("/:id", h.Session.GetSession)
		sessions.PUT("/:id/proposed", h.Session.ProposeChange)
		sessions.DELETE("/:id", h.Session.EndSession)
	}

	selections := r.Group("/selections")
	{
		selections.GET("/:account", h.Selection.GetSelection)
		selections.PUT("/:account", h.Selection.SaveSelection)
	}
}
