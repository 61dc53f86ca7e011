// Package money implements fixed-point amounts in Omani Rial minor units.
// One rial is 1000 units (scale 3). All arithmetic stays in integer minor
// units; rounding happens only at the operations that define it (percentage
// and division), using round-half-up.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Scale is the number of fractional digits carried by Money.
const Scale = 3

// unitsPerMajor is the number of minor units in one major currency unit.
const unitsPerMajor = 1000

// ErrInvalidAmount is returned when an amount cannot be parsed or is
// negative where a non-negative amount is required.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is an amount in minor units (thousandths of a rial).
type Money int64

// FromUnits wraps a raw minor-unit count.
func FromUnits(units int64) Money {
	return Money(units)
}

// FromString parses a non-negative decimal amount with at most three
// fractional digits ("12", "12.3", "12.345").
func FromString(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(fracPart) > Scale {
		return 0, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, Scale)
	}

	var units int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		units = units*10 + int64(r-'0')
	}
	units *= unitsPerMajor

	if fracPart != "" {
		var frac int64
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
			frac = frac*10 + int64(r-'0')
		}
		for i := len(fracPart); i < Scale; i++ {
			frac *= 10
		}
		units += frac
	}

	return Money(units), nil
}

// MustFromString parses s and panics on error. For constants in tests and
// fixtures only.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Units returns the raw minor-unit count.
func (m Money) Units() int64 { return int64(m) }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m < 0 }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m == 0 }

// Add returns m + other.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns m - other. The result may be negative; callers that must not
// go below zero clamp with Max.
func (m Money) Sub(other Money) Money { return m - other }

// Max returns the larger of m and other.
func (m Money) Max(other Money) Money {
	if m > other {
		return m
	}
	return other
}

// Min returns the smaller of m and other.
func (m Money) Min(other Money) Money {
	if m < other {
		return m
	}
	return other
}

// MulInt returns m multiplied by a non-negative integer count. Exact, no
// rounding involved.
func (m Money) MulInt(n int64) Money {
	return Money(int64(m) * n)
}

// DivInt divides m by a positive integer count, rounding half up to the
// minor unit.
func (m Money) DivInt(n int64) Money {
	if n <= 0 || m < 0 {
		return 0
	}
	return Money((int64(m) + n/2) / n)
}

// Percent returns p of m, rounded half up to the minor unit. The product is
// accumulated in 128 bits so no precision is lost before the single
// rounding step.
func (m Money) Percent(p Percent) Money {
	if m <= 0 || p <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(m), uint64(p))
	lo, carry := bits.Add64(lo, uint64(basisPointDenom)/2, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, uint64(basisPointDenom))
	return Money(q)
}

// String formats the amount as a decimal with three fractional digits.
func (m Money) String() string {
	units := int64(m)
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%d.%03d", sign, units/unitsPerMajor, units%unitsPerMajor)
}

// MarshalJSON encodes the amount as a decimal string ("90.000") so clients
// never see binary floating point.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
