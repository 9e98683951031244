package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// FirstInvoice is the prorated charge for the rest of the current month.
type FirstInvoice struct {
	BillingCycle         BillingCycle
	ProratedAmount       Money
	FirstFullBillingDate time.Time
	RemainingDays        int
	DaysInMonth          int
}

// ComputeFirstInvoice prorates a monthly total over the days left in today's month.
// Both cycles bill monthly, so the cycle is carried through for display only.
// On the last day of the month the prorated amount is zero.
func ComputeFirstInvoice(total Money, cycle BillingCycle, today time.Time) FirstInvoice {
	days := daysInMonth(today.Year(), today.Month())
	remaining := days - today.Day()

	prorated := total.Decimal().
		Mul(decimal.NewFromInt(int64(remaining))).
		Div(decimal.NewFromInt(int64(days)))

	return FirstInvoice{
		BillingCycle:         cycle,
		ProratedAmount:       moneyFromDecimal(prorated),
		FirstFullBillingDate: firstOfNextMonth(today),
		RemainingDays:        remaining,
		DaysInMonth:          days,
	}
}

// RenewalDate returns the next renewal of a contract started at start, as seen from today.
// Monthly contracts renew on the first of next month; annual ones on the contract anniversary.
func RenewalDate(cycle BillingCycle, start, today time.Time) time.Time {
	if !cycle.HasCommitment() {
		return firstOfNextMonth(today)
	}
	end := addMonthsClamped(dateOf(start), contractMonths)
	for !end.After(dateOf(today)) {
		end = addMonthsClamped(end, contractMonths)
	}
	return end
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// dateOf drops the time of day, keeping the calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// addMonthsClamped adds calendar months, clamping the day to the target month's
// length (Jan 31 + 1 month = Feb 28/29). time.AddDate would overflow into the next month.
func addMonthsClamped(t time.Time, months int) time.Time {
	idx := int(t.Month()) - 1 + months
	year := t.Year() + idx/12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	month := time.Month(idx + 1)

	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
