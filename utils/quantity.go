package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places kept by Scaled accumulators.
// Quantities are multiplied by 10^QuantityScale and summed as integers so repeated
// addition of non-exact decimals never drifts.
const QuantityScale = 4

// MaxScaled is the largest magnitude a Scaled holds: 18 digits, the same as the NUMERIC(18,4)
// quantity columns. The sum of two in-range values always fits in an int64, so Add can check
// the result after adding.
const MaxScaled Scaled = 999_999_999_999_999_999

// ErrQuantityOutOfRange is returned when a quantity or a sum does not fit in MaxScaled
var ErrQuantityOutOfRange = errors.New("quantity out of range")

var maxScaledDecimal = decimal.New(int64(MaxScaled), 0)

// Scaled is a fixed-point quantity: the value times 10^QuantityScale
type Scaled int64

// ToScaled converts a decimal into fixed point, rounding half away from zero at the scale
func ToScaled(d decimal.Decimal) (Scaled, error) {
	shifted := d.Shift(QuantityScale).Round(0)
	if shifted.Abs().GreaterThan(maxScaledDecimal) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, d.String())
	}
	return Scaled(shifted.IntPart()), nil
}

// ParseScaled parses a decimal string ("3", "1.10", "-0.5") into fixed point
func ParseScaled(s string) (Scaled, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return ToScaled(d)
}

// Add returns s+o, or ErrQuantityOutOfRange when the sum leaves the representable range
func (s Scaled) Add(o Scaled) (Scaled, error) {
	sum := s + o
	if sum > MaxScaled || sum < -MaxScaled {
		return 0, fmt.Errorf("%w: %s + %s", ErrQuantityOutOfRange, s, o)
	}
	return sum, nil
}

// Decimal converts back to an exact decimal
func (s Scaled) Decimal() decimal.Decimal {
	return decimal.New(int64(s), -QuantityScale)
}

// String renders the quantity with trailing zeros trimmed ("3.3", "3")
func (s Scaled) String() string {
	return s.Decimal().String()
}

// Fixed2 renders the quantity with exactly two decimals ("3.30")
func (s Scaled) Fixed2() string {
	return s.Decimal().StringFixed(2)
}

// Round2 rounds half away from zero to two decimals, staying in fixed point
func (s Scaled) Round2() Scaled {
	const step = 100
	q, r := s/step, s%step
	switch {
	case r >= step/2:
		q++
	case r <= -step/2:
		q--
	}
	return q * step
}
