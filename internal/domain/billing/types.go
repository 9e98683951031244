package billing

// BillingCycle represents the billing period.
// Both cycles are billed monthly; annual carries a 12-month commitment.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

// String returns the string representation of the billing cycle.
func (b BillingCycle) String() string {
	return string(b)
}

// IsValid checks if the billing cycle is valid.
func (b BillingCycle) IsValid() bool {
	switch b {
	case BillingCycleMonthly, BillingCycleAnnual:
		return true
	}
	return false
}

// HasCommitment returns true if the cycle carries a contract term.
func (b BillingCycle) HasCommitment() bool {
	return b == BillingCycleAnnual
}

// PaymentMethodType is the kind of payment method on file.
type PaymentMethodType string

const (
	PaymentMethodCard PaymentMethodType = "card"
	PaymentMethodACH  PaymentMethodType = "ach"
)

// String returns the string representation of the payment method type.
func (p PaymentMethodType) String() string {
	return string(p)
}

// IsValid checks if the payment method type is valid.
func (p PaymentMethodType) IsValid() bool {
	switch p {
	case PaymentMethodCard, PaymentMethodACH:
		return true
	}
	return false
}

// AddOnBillingType describes how an add-on is charged.
type AddOnBillingType string

const (
	AddOnBillingSubscription AddOnBillingType = "subscription"
	AddOnBillingMetered      AddOnBillingType = "metered"
)

// IsValid checks if the add-on billing type is valid.
func (t AddOnBillingType) IsValid() bool {
	switch t {
	case AddOnBillingSubscription, AddOnBillingMetered:
		return true
	}
	return false
}
