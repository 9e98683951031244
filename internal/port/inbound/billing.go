package inbound

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parcelapi/planengine/internal/domain/billing"
)

// PlanChangeDomain defines the plan-change engine as seen by inbound adapters.
type PlanChangeDomain interface {
	// Catalog
	Plans() []*billing.Plan
	Plan(id string) (*billing.Plan, error)
	AddOns() []*billing.AddOn
	Policy() billing.OveragePolicy

	// Calculations
	ComputeCosts(sel billing.Selection, cycle billing.BillingCycle) (*billing.CostBreakdown, error)
	ComputeEarlyTerminationFee(monthlyTotal billing.Money, cycle billing.BillingCycle, contractStart time.Time) *billing.TerminationInfo
	CanSelectOverageMode(mode billing.OverageMode, planID string) bool
	Quote(sel billing.Selection, contractStart *time.Time) (*billing.Quote, error)

	// Sessions
	StartSession(current billing.CurrentSubscription) (*billing.SessionState, error)
	Propose(id uuid.UUID, sel billing.Selection) (*billing.SessionState, error)
	SessionState(id uuid.UUID) (*billing.SessionState, error)
	EndSession(id uuid.UUID)
	ActiveSessions() int

	// Persisted selection
	RestoreSelection(ctx context.Context, key string) billing.Selection
	RememberSelection(key string, sel billing.Selection) error
}

// ===== Catalog and Pricing HTTP Ports =====

// PricingHttpPort defines catalog and pricing HTTP handler interface.
type PricingHttpPort interface {
	// ListPlans handles GET /plans.
	ListPlans(c *gin.Context)

	// GetPlan handles GET /plans/:id.
	GetPlan(c *gin.Context)

	// ListAddOns handles GET /addons.
	ListAddOns(c *gin.Context)

	// CreateQuote handles POST /quotes.
	CreateQuote(c *gin.Context)

	// TerminationFee handles POST /termination-fee.
	TerminationFee(c *gin.Context)

	// CheckOverage handles POST /overage/check.
	CheckOverage(c *gin.Context)
}

// ===== Session HTTP Ports =====

// SessionHttpPort defines plan-change session HTTP handler interface.
type SessionHttpPort interface {
	// StartSession handles POST /sessions.
	StartSession(c *gin.Context)

	// GetSession handles GET /sessions/:id.
	GetSession(c *gin.Context)

	// ProposeChange handles PUT /sessions/:id/proposed.
	ProposeChange(c *gin.Context)

	// EndSession handles DELETE /sessions/:id.
	EndSession(c *gin.Context)
}

// ===== Selection HTTP Ports =====

// SelectionHttpPort defines saved selection HTTP handler interface.
type SelectionHttpPort interface {
	// GetSelection handles GET /selections/:account.
	GetSelection(c *gin.Context)

	// SaveSelection handles PUT /selections/:account.
	SaveSelection(c *gin.Context)
}

// Compile-time check
var _ PlanChangeDomain = (*billing.Domain)(nil)
