package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount a single transaction may carry.
const MaxAmount = math.MaxInt32

const currencySymbol = "$"

// MsgAmountInvalid is reported when the amount field is not a whole number.
const MsgAmountInvalid = "Amount must be a whole number."

// ParseAmount parses a whole currency amount typed into a form.
//
// A leading currency symbol and thousands separators are accepted, as is a
// zero fractional part ("1,250", "$40", "12.00"). Fractions and values that
// overflow MaxAmount are rejected with ErrInvalidAmount. Zero and negative
// values parse successfully so that Transaction.Validate can report them.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, currencySymbol)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidAmount, s)
	}
	if d.GreaterThan(decimal.NewFromInt(MaxAmount)) || d.LessThan(decimal.NewFromInt(-MaxAmount)) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return d.IntPart(), nil
}

// FormatCurrency renders a whole amount in en-US currency style with no
// decimals: 1234 -> "$1,234", -50 -> "-$50".
func FormatCurrency(amount int64) string {
	if amount < 0 {
		return "-" + currencySymbol + humanize.Comma(-amount)
	}
	return currencySymbol + humanize.Comma(amount)
}
