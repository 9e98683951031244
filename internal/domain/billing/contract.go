package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

const contractMonths = 12

// earlyTerminationRate is the share of the remaining contract value charged on early exit.
var earlyTerminationRate = decimal.New(5, -1)

// TerminationInfo describes the cost of ending an annual contract early.
type TerminationInfo struct {
	ContractStart          time.Time
	ContractEnd            time.Time
	MonthsCompleted        int
	RemainingMonths        int
	RemainingContractValue Money
	// EarlyTerminationFee is exactly half the remaining contract value, in cents.
	// It may carry half a cent; FeeDue rounds it for invoicing.
	EarlyTerminationFee decimal.Decimal
}

// FeeDue returns the early termination fee rounded half-to-even to the cent.
func (t *TerminationInfo) FeeDue() Money {
	return moneyFromDecimal(t.EarlyTerminationFee)
}

// ComputeEarlyTerminationFee returns the termination terms of an annual contract,
// or nil for monthly contracts, which carry no commitment.
func ComputeEarlyTerminationFee(monthlyTotal Money, cycle BillingCycle, contractStart, today time.Time) *TerminationInfo {
	if !cycle.HasCommitment() {
		return nil
	}

	start := dateOf(contractStart)
	end := addMonthsClamped(start, contractMonths)

	remaining := clampMonths(monthsUntil(dateOf(today), end))
	value := monthlyTotal.Multiply(remaining)

	return &TerminationInfo{
		ContractStart:          start,
		ContractEnd:            end,
		MonthsCompleted:        contractMonths - remaining,
		RemainingMonths:        remaining,
		RemainingContractValue: value,
		EarlyTerminationFee:    value.Decimal().Mul(earlyTerminationRate),
	}
}

// monthsUntil returns ceil(monthsBetween(from, to)): the smallest number of
// calendar months that, added to from, reaches or passes to.
func monthsUntil(from, to time.Time) int {
	if !from.Before(to) {
		return 0
	}
	n := 1
	for n <= contractMonths && addMonthsClamped(from, n).Before(to) {
		n++
	}
	return n
}

func clampMonths(n int) int {
	switch {
	case n < 0:
		return 0
	case n > contractMonths:
		return contractMonths
	}
	return n
}
