package billing

import "errors"

// Domain errors for billing.
var (
	// Catalog errors
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrAddOnNotFound  = errors.New("add-on not found")
	ErrNoPriceForPlan = errors.New("add-on has no price for plan")
	ErrInvalidCatalog = errors.New("invalid catalog")

	// Selection errors
	ErrInvalidBillingCycle  = errors.New("invalid billing cycle")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidOverageMode   = errors.New("invalid overage mode")
	ErrSelectionNotFound    = errors.New("selection not found")

	// Session errors
	ErrNotInitialized  = errors.New("session not initialized")
	ErrInvalidSnapshot = errors.New("invalid subscription snapshot")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRequest  = errors.New("invalid request")
)
