package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/domain/billing"
	"github.com/parcelapi/planengine/internal/port/inbound"
	"github.com/parcelapi/planengine/internal/utils/metrics"
	"go.uber.org/zap"
)

// sessionHandler implements inbound.SessionHttpPort.
type sessionHandler struct {
	domain  inbound.PlanChangeDomain
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSessionHandler creates a new plan-change session HTTP handler.
func NewSessionHandler(domain inbound.PlanChangeDomain, m *metrics.Metrics, logger *zap.Logger) inbound.SessionHttpPort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionHandler{domain: domain, metrics: m, logger: logger}
}

func (h *sessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	state, err := h.domain.StartSession(billing.CurrentSubscription{
		PlanID:      req.PlanID,
		AddOnIDs:    req.AddOnIDs,
		OverageMode: billing.OverageMode(req.OverageMode),
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSessionStarted(h.domain.ActiveSessions())
	}
	c.JSON(http.StatusCreated, toSessionResponse(state))
}

func (h *sessionHandler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	state, err := h.domain.SessionState(id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(state))
}

func (h *sessionHandler) ProposeChange(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	state, err := h.domain.Propose(id, req.ToSelection())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if h.metrics != nil {
		ch := state.Changes
		h.metrics.RecordProposal(ch.PlanChanged, ch.AddOnsChanged, ch.OverageModeChanged)
	}
	c.JSON(http.StatusOK, toSessionResponse(state))
}

func (h *sessionHandler) EndSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	h.domain.EndSession(id)

	if h.metrics != nil {
		h.metrics.SetActiveSessions(h.domain.ActiveSessions())
	}
	c.Status(http.StatusNoContent)
}
