// Package money implements fixed-point currency amounts in minor units
// (paise). All arithmetic is integer arithmetic; rounding to whole paise is
// half-up and happens only in ApplyRate.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in minor currency units (1/100 of a rupee).
type Money int64

// Zero is the zero amount.
const Zero Money = 0

const maxIntegerDigits = 13

// MaxAmount is the largest amount Parse accepts (9999999999999.99). Checked
// arithmetic keeps results at or below it, which also leaves ApplyRate room
// for rates with denominators up to 1000.
const MaxAmount Money = 999_999_999_999_999

var (
	// ErrInvalidAmount is returned when a string cannot be read as a non-negative amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOverflow is returned by checked arithmetic when a result leaves [0, MaxAmount].
	ErrOverflow = errors.New("amount out of range")
)

// Parse reads a non-negative decimal amount such as "12", "12.5" or "12.505".
// Digits beyond the second decimal place are rounded half-up.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) || !allDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(intPart) > maxIntegerDigits {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	var paise int64
	switch len(fracPart) {
	case 0:
	case 1:
		paise = int64(fracPart[0]-'0') * 10
	default:
		paise = int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			paise++
		}
	}
	return Money(whole*100 + paise), nil
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromRupees builds an amount from whole rupees and paise.
func FromRupees(rupees, paise int64) Money {
	return Money(rupees*100 + paise)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Mul returns m multiplied by a quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// MulChecked returns m * qty, or ErrOverflow when either operand is negative
// or the product exceeds MaxAmount.
func (m Money) MulChecked(qty int) (Money, error) {
	if m < 0 || m > MaxAmount || qty < 0 {
		return 0, fmt.Errorf("%w: %s x %d", ErrOverflow, m, qty)
	}
	if qty > 0 && int64(m) > int64(MaxAmount)/int64(qty) {
		return 0, fmt.Errorf("%w: %s x %d", ErrOverflow, m, qty)
	}
	return m * Money(qty), nil
}

// AddChecked returns m + o, or ErrOverflow when either operand is negative or
// the sum exceeds MaxAmount.
func (m Money) AddChecked(o Money) (Money, error) {
	if m < 0 || o < 0 || o > MaxAmount || m > MaxAmount-o {
		return 0, fmt.Errorf("%w: %s + %s", ErrOverflow, m, o)
	}
	return m + o, nil
}

// ApplyRate returns m * num / den rounded half-up to whole paise.
// Exact for |m| <= MaxAmount and num <= 1000.
// Rates are passed as integer fractions so 5% is ApplyRate(5, 100)
// and 2.5% is ApplyRate(25, 1000).
func (m Money) ApplyRate(num, den int64) Money {
	v := int64(m) * num
	if v >= 0 {
		return Money((2*v + den) / (2 * den))
	}
	return -Money((-2*v + den) / (2 * den))
}

// Paise returns the raw minor-unit value.
func (m Money) Paise() int64 {
	return int64(m)
}

// String renders the amount with exactly two decimals, e.g. "52.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return fmt.Errorf("%w: null", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, s)
		}
		s = unq
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
