package folio

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "INR"

// Money represents a monetary value.
//
// The value is kept exact through every accumulation; it is only rounded to the
// currency fraction by String and Round.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates Money from any supported number in the given currency.
func M[T number](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses a decimal string as an amount of currency.
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: d, cur: currency}, nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, rounded to the
// currency fraction.
func (m Money) String() string {
	if m.cur == "" {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.Round().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Round returns the value rounded to the currency fraction (2 digits when unknown).
// It is meant for presentation boundaries only.
func (m Money) Round() Money {
	places := int32(2)
	if m.cur != "" {
		places = int32(m.currency().Fraction)
	}
	return Money{value: m.value.Round(places), cur: m.cur}
}

func (m Money) Currency() string                 { return m.cur }
func (m Money) Decimal() decimal.Decimal         { return m.value }
func (m Money) Equal(n Money) bool               { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                     { return m.value.IsZero() }
func (m Money) IsPositive() bool                 { return m.value.IsPositive() }
func (m Money) IsNegative() bool                 { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool            { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool     { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool         { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool  { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                       { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money             { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money             { return Money{value: m.value.Div(n.value), cur: m.cur} }
func (m Money) Scale(f decimal.Decimal) Money    { return Money{value: m.value.Mul(f), cur: m.cur} }
func (m Money) Discount(f decimal.Decimal) Money { return Money{value: m.value.Div(f), cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// Float returns an approximation of the value, for ratios and charts only.
func (m Money) Float() float64 { return m.value.InexactFloat64() }

// MarshalJSON writes the exact amount; the currency is written by the enclosing record.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

// UnmarshalJSON reads an amount; the currency is set by the enclosing record.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}

// In returns the same amount expressed in currency c.
func (m Money) In(c string) Money { return Money{value: m.value, cur: c} }
