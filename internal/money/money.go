// Package money provides the fixed-point monetary value used for every
// balance and amount in the ledger: two fractional digits, half-away-from-zero
// rounding, no binary floating point anywhere.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount covers malformed monetary input and amounts whose sign or
// precision an operation cannot accept. Re-exported as domain.ErrInvalidAmount.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is a signed fixed-point decimal with exactly two fractional digits.
// The zero value is 0.00 and ready to use.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

// FromString parses a decimal string such as "100.00" or "-3.5".
// More than two meaningful fractional digits is an error: the caller sent a
// precision the ledger cannot store without silently rounding.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money.FromString: %q: %w", s, ErrInvalidAmount)
	}
	if !d.Round(2).Equal(d) {
		return Money{}, fmt.Errorf("money.FromString: %q has more than 2 fractional digits: %w", s, ErrInvalidAmount)
	}
	return Money{d: d.Round(2)}, nil
}

// MustFromString is FromString for trusted literals; it panics on error.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal rounds an arbitrary-precision decimal to a Money value,
// half away from zero. Used where rounding is the explicit intent,
// e.g. after an interest multiplication.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// MulRate multiplies by an arbitrary-precision rate and rounds the result
// back to two fractional digits, half away from zero.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).Round(2)}
}

func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

// String renders with exactly two fractional digits, e.g. "30.00".
func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.d.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as NUMERIC(20,2).
func (m Money) Value() (driver.Value, error) {
	return m.d.StringFixed(2), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money.Scan: %w", err)
	}
	m.d = d
	return nil
}
