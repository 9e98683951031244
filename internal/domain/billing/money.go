package billing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. It is an immutable value object.
type Money struct {
	cents int64
}

// Cents creates Money from an amount in cents.
func Cents(amount int64) Money {
	return Money{cents: amount}
}

// Dollars creates Money from a whole-dollar amount.
func Dollars(amount int64) Money {
	return Money{cents: amount * 100}
}

// ZeroMoney is the zero amount.
var ZeroMoney = Money{}

// Cents returns the amount in cents.
func (m Money) Cents() int64 {
	return m.cents
}

// Decimal returns the amount in cents as a decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.cents)
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Multiply returns the amount multiplied by factor.
func (m Money) Multiply(factor int) Money {
	return Money{cents: m.cents * int64(factor)}
}

// String returns the amount in cents, e.g. "170000".
func (m Money) String() string {
	return strconv.FormatInt(m.cents, 10)
}

// Format renders the amount for display: "$1,234" for whole dollars, "$1,234.56" otherwise.
func (m Money) Format() string {
	cents := m.cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	out := sign + "$" + groupThousands(cents/100)
	if rem := cents % 100; rem != 0 {
		out += "." + leftPad2(rem)
	}
	return out
}

// moneyFromDecimal rounds a cent amount to whole cents using banker's rounding.
func moneyFromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.RoundBank(0).IntPart()}
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func leftPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
