// Package money converts between the decimal amounts exchanged with clients
// and the integer cents used for every calculation inside the ledger.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrOutOfRange = errors.New("amount out of range")

// maxCents keeps sums of many amounts far away from int64 overflow.
const maxCents = int64(1e15)

var hundred = decimal.NewFromInt(100)

// Amount is a monetary value in cents. It is encoded in JSON as a decimal
// number with two places, e.g. 1234 -> 12.34.
type Amount int64

// FromDecimal rounds d to two places (half away from zero) and returns it in cents.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Round(2).Mul(hundred)
	if cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrOutOfRange
	}

	return Amount(cents.IntPart()), nil
}

// Parse reads a decimal string such as "150", "150.5" or "150,50".
func Parse(s string) (Amount, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return FromDecimal(d)
}

func (a Amount) Cents() int64 { return int64(a) }

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}

	d, err := decimal.NewFromString(strings.Trim(s, `"`))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", s, err)
	}

	v, err := FromDecimal(d)
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// Percentage returns part/whole*100 rounded to two places. A non-positive
// whole yields 0.
func Percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}

	return decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(whole)).
		Round(2).
		InexactFloat64()
}
