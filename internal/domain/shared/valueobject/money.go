package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	CNY Currency = "CNY" // Chinese Yuan (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	CLP Currency = "CLP" // Chilean Peso, no minor unit
	JPY Currency = "JPY" // Japanese Yen, no minor unit
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = CNY

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case CNY, USD, EUR, CLP, JPY:
		return true
	}
	return false
}

// MinorUnits returns the number of decimal places of the currency's minor unit
func (c Currency) MinorUnits() int32 {
	switch c {
	case CLP, JPY:
		return 0
	default:
		return 2
	}
}

// MinorUnit returns the value of one minor unit (0.01 for CNY, 1 for CLP)
func (c Currency) MinorUnit() decimal.Decimal {
	return decimal.New(1, -c.MinorUnits())
}

// Tolerance is the largest absolute amount still treated as zero when
// comparing settled totals. It is half of one minor unit, so any amount
// representable in the currency compares exactly.
func (c Currency) Tolerance() decimal.Decimal {
	return c.MinorUnit().Div(decimal.NewFromInt(2))
}

// Money is an immutable monetary amount in a single currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("unsupported currency: %s", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney creates Money and panics on an invalid currency. Intended for
// constants and tests.
func MustMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code
func (m Money) Currency() Currency { return m.currency }

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Add returns the sum of both amounts. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of both amounts. Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Abs returns the absolute value
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Round rounds the amount to the currency's minor unit
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(m.currency.MinorUnits()), currency: m.currency}
}

// IsSettled reports whether the amount is within the currency tolerance of zero
func (m Money) IsSettled() bool {
	return m.amount.Abs().LessThanOrEqual(m.currency.Tolerance())
}

// Equals returns true if both Money values have the same amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.MinorUnits()), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
