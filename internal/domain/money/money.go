// Package money implements fixed-scale decimal arithmetic for monetary
// amounts. Scale is always 2 decimal places; values are never floating
// point and arithmetic never silently loses precision.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be parsed as a
// 2-decimal-place monetary amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrOverflow is returned when an arithmetic result falls outside the
// representable range (±10^18 minor units).
var ErrOverflow = errors.New("amount overflows representable range")

const scale = 2

// maxMajorUnits is 10^18 minor units expressed in major units (10^16),
// the outer bound on any representable amount.
var maxMajorUnits = decimal.New(1_000_000_000_000_000_000, -scale)

// Money is a signed, fixed-scale decimal value. The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{d: decimal.Zero}

// NewFromMinorUnits builds a Money from an integer count of minor units
// (cents), e.g. NewFromMinorUnits(10050) == 100.50.
func NewFromMinorUnits(units int64) Money {
	return Money{d: decimal.New(units, -scale)}
}

// Parse accepts a decimal number or decimal string with at most 2
// fractional digits, e.g. "100", "100.5", "100.50". More than 2
// fractional digits fails with ErrInvalidAmount.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}

	if fractionalDigits(d) > scale {
		return Money{}, ErrInvalidAmount
	}

	m := Money{d: d.Truncate(scale)}
	if m.overflows() {
		return Money{}, ErrOverflow
	}
	return m, nil
}

func fractionalDigits(d decimal.Decimal) int32 {
	exp := d.Exponent()
	if exp >= 0 {
		return 0
	}
	return -exp
}

func (m Money) overflows() bool {
	return m.d.Abs().GreaterThan(maxMajorUnits)
}

// Add returns m + other, failing with ErrOverflow if the result exceeds
// the representable range.
func (m Money) Add(other Money) (Money, error) {
	r := Money{d: m.d.Add(other.d)}
	if r.overflows() {
		return Money{}, ErrOverflow
	}
	return r, nil
}

// Sub returns m - other, failing with ErrOverflow if the result exceeds
// the representable range.
func (m Money) Sub(other Money) (Money, error) {
	r := Money{d: m.d.Sub(other.d)}
	if r.overflows() {
		return Money{}, ErrOverflow
	}
	return r, nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// Cmp returns -1, 0, or 1 per decimal.Decimal.Cmp semantics.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

// GreaterThanOrEqual reports whether m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.d.GreaterThanOrEqual(other.d)
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// MinorUnits returns m expressed as an integer count of minor units
// (cents). Used for the transaction-amount metric; the stores keep
// balances as decimals, not as minor units.
func (m Money) MinorUnits() int64 {
	return m.d.Shift(scale).IntPart()
}

// String renders m with exactly 2 fractional digits, e.g. "100.00".
func (m Money) String() string {
	return m.d.StringFixed(scale)
}

// MarshalJSON renders Money as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
