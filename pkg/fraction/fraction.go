// Package fraction converts US Treasury fractional price notation.
//
// A price is written as "AAA-xyz": AAA is the whole part, xy counts 32nds
// (00..31) and z counts 256ths within that 32nd (0..7, with '+' meaning 4).
// "99-16+" is therefore 99 + 16/32 + 4/256.
package fraction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bondtrading/pkg/exception"
)

var ErrMalformed = fmt.Errorf("fraction: %w", exception.ErrMalformedRecord)

const ticksPerUnit = 256

var tick = decimal.NewFromInt(ticksPerUnit)

// Parse converts a fractional price string to a decimal price.
func Parse(s string) (decimal.Decimal, error) {
	whole, frac, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || !isDigits(whole) || len(frac) != 3 || !isDigits(frac[:2]) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	a, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	xy, _ := strconv.ParseInt(frac[:2], 10, 64)
	if xy > 31 {
		return decimal.Zero, fmt.Errorf("%w: 32nds out of range in %q", ErrMalformed, s)
	}
	var z int64
	switch c := frac[2]; {
	case c == '+':
		z = 4
	case c >= '0' && c <= '7':
		z = int64(c - '0')
	default:
		return decimal.Zero, fmt.Errorf("%w: 256ths out of range in %q", ErrMalformed, s)
	}
	return decimal.NewFromInt(a*ticksPerUnit + xy*8 + z).Div(tick), nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Format renders a price in fractional notation, rounded to the nearest 256th.
func Format(price decimal.Decimal) string {
	ticks := price.Mul(tick).Round(0).IntPart()
	sign := ""
	if ticks < 0 {
		sign = "-"
		ticks = -ticks
	}
	rem := ticks % ticksPerUnit
	z := strconv.FormatInt(rem%8, 10)
	if rem%8 == 4 {
		z = "+"
	}
	return fmt.Sprintf("%s%d-%02d%s", sign, ticks/ticksPerUnit, rem/8, z)
}

// Ticks returns a price expressed as a whole number of 256ths.
func Ticks(price decimal.Decimal) int64 {
	return price.Mul(tick).Round(0).IntPart()
}

// FromTicks builds a price from a whole number of 256ths.
func FromTicks(ticks int64) decimal.Decimal {
	return decimal.NewFromInt(ticks).Div(tick)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
