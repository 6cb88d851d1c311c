package domain

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in BRL. Arithmetic is exact; values are rendered with two decimals
// unless that would drop digits.
type Money struct {
	decimal.Decimal
}

func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d}, nil
}

// MustMoney is NewMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money {
	return Money{decimal.Zero}
}

func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

func (m Money) Times(quantity int) Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

func (m Money) String() string {
	if m.HasSubCents() {
		return m.Decimal.String()
	}
	return m.Decimal.StringFixed(2)
}

// HasSubCents reports whether m is not a whole number of centavos.
func (m Money) HasSubCents() bool {
	return !m.Decimal.Equal(m.Decimal.Round(2))
}

// MarshalJSON writes a bare number, e.g. 299.70 or 0.125.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = ZeroMoney()
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("parse money %q: %w", data, err)
	}
	m.Decimal = d
	return nil
}
