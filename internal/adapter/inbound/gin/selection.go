package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/port/inbound"
	"go.uber.org/zap"
)

// selectionHandler implements inbound.SelectionHttpPort.
type selectionHandler struct {
	domain inbound.PlanChangeDomain
	logger *zap.Logger
}

// NewSelectionHandler creates a new saved selection HTTP handler.
func NewSelectionHandler(domain inbound.PlanChangeDomain, logger *zap.Logger) inbound.SelectionHttpPort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &selectionHandler{domain: domain, logger: logger}
}

// GetSelection always answers 200: a missing or unreadable selection yields the default.
func (h *selectionHandler) GetSelection(c *gin.Context) {
	key, ok := accountKey(c)
	if !ok {
		return
	}

	sel := h.domain.RestoreSelection(c.Request.Context(), key)
	c.JSON(http.StatusOK, toSelectionResponse(sel))
}

// SaveSelection answers 202 once the selection is valid; the write completes in the background.
func (h *selectionHandler) SaveSelection(c *gin.Context) {
	key, ok := accountKey(c)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	sel := req.ToSelection()
	if err := h.domain.RememberSelection(key, sel); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, toSelectionResponse(sel))
}
