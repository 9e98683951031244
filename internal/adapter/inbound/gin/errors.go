package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/domain/billing"
	apperrors "github.com/parcelapi/planengine/internal/utils/errors"
	"github.com/parcelapi/planengine/internal/utils/requestctx"
	"go.uber.org/zap"
)

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := mapError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		requestctx.Logger(c.Request.Context(), logger).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

func mapError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, billing.ErrUnknownPlan):
		return apperrors.NewAppError("UNKNOWN_PLAN", err.Error(), http.StatusUnprocessableEntity, err)

	case errors.Is(err, billing.ErrInvalidBillingCycle):
		return apperrors.NewAppError("INVALID_BILLING_CYCLE", err.Error(), http.StatusUnprocessableEntity, err)

	case errors.Is(err, billing.ErrInvalidOverageMode):
		return apperrors.NewAppError("INVALID_OVERAGE_MODE", err.Error(), http.StatusUnprocessableEntity, err)

	case errors.Is(err, billing.ErrInvalidPaymentMethod):
		return apperrors.NewAppError("INVALID_PAYMENT_METHOD", err.Error(), http.StatusUnprocessableEntity, err)

	case errors.Is(err, billing.ErrInvalidRequest):
		return apperrors.ValidationError(err.Error()).WithError(err)

	case errors.Is(err, billing.ErrSessionNotFound):
		return apperrors.NotFound("session").WithError(err)

	case errors.Is(err, billing.ErrNotInitialized):
		return apperrors.NewAppError("SESSION_NOT_INITIALIZED", err.Error(), http.StatusConflict, err)

	case errors.Is(err, billing.ErrInvalidSnapshot):
		return apperrors.NewAppError("INVALID_SNAPSHOT", err.Error(), http.StatusUnprocessableEntity, err)
	}

	return apperrors.AsAppError(err)
}

// abortBadRequest writes a 400 for a malformed request.
func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apperrors.BadRequest(message).ToResponse())
}
