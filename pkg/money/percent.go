package money

import (
	"encoding/json"
	"fmt"
	"strings"
)

// basisPointDenom converts basis points back to a whole: 10000 bp = 100%.
const basisPointDenom = 10000

// Percent is a percentage in basis points (1250 = 12.5%). Keeping fractional
// percentages as integers keeps discount math deterministic.
type Percent int64

// PercentFromString parses a decimal percentage with at most two fractional
// digits ("10", "12.5", "0.25").
func PercentFromString(s string) (Percent, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, fmt.Errorf("%w: percent %q", ErrInvalidAmount, s)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: percent %q", ErrInvalidAmount, s)
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("%w: percent %q has more than 2 fractional digits", ErrInvalidAmount, s)
	}

	var bp int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: percent %q", ErrInvalidAmount, s)
		}
		bp = bp*10 + int64(r-'0')
	}
	bp *= 100

	if fracPart != "" {
		var frac int64
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("%w: percent %q", ErrInvalidAmount, s)
			}
			frac = frac*10 + int64(r-'0')
		}
		if len(fracPart) == 1 {
			frac *= 10
		}
		bp += frac
	}

	return Percent(bp), nil
}

// MustPercent parses s and panics on error.
func MustPercent(s string) Percent {
	p, err := PercentFromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Valid reports whether the percentage is in (0, 100].
func (p Percent) Valid() bool {
	return p > 0 && p <= basisPointDenom
}

// String formats the percentage as a decimal ("12.5").
func (p Percent) String() string {
	bp := int64(p)
	sign := ""
	if bp < 0 {
		sign = "-"
		bp = -bp
	}
	whole := bp / 100
	frac := bp % 100
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	if frac%10 == 0 {
		return fmt.Sprintf("%s%d.%d", sign, whole, frac/10)
	}
	return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
}

// MarshalJSON encodes the percentage as a decimal string.
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a decimal string or a bare JSON number.
func (p *Percent) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := PercentFromString(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
