// Package core holds the ledger domain types and money handling.
//
// Money is carried as integer cents everywhere; floats only appear at the
// formatting boundary. Derivations that divide (total over months, monthly
// over the fixed 30-day month) go through shopspring/decimal so rounding is
// half-up at two decimals, matching what users expect from money math.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a non-negative decimal string to cents with
// half-up rounding on the third decimal place.
//
// Signs are rejected: command grammars only ever pass plain digits, and a
// leading sign means the matcher should not have fired in the first place.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds half-up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// daysPerMonth is the fixed month length used for daily-equivalent amounts.
// Deliberately not calendar-aware.
const daysPerMonth = 30

// MonthlyFromTotal derives the monthly amount of an installment plan:
// round(total / months, 2).
func MonthlyFromTotal(total Money, months int) (Money, error) {
	if total.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	if months <= 0 {
		return Money{}, ErrInvalidMonths
	}
	d := decimal.New(total.Cents, -2).
		Div(decimal.NewFromInt(int64(months))).
		Round(2)
	return Money{Cents: d.Shift(2).IntPart()}, nil
}

// DailyFromMonthly is the daily-equivalent of a monthly amount:
// round(monthly / 30, 2).
func DailyFromMonthly(monthly Money) Money {
	d := decimal.New(monthly.Cents, -2).
		Div(decimal.NewFromInt(daysPerMonth)).
		Round(2)
	return Money{Cents: d.Shift(2).IntPart()}
}

// Decimal returns the amount as a two-decimal decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Neg returns the negated amount. Sums of entries can go negative even
// though individual amounts never do.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Format renders the amount with thousands separators and two decimals,
// e.g. 1130000 cents -> "11,300.00". Negative amounts keep the sign in
// front of the grouped digits.
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
