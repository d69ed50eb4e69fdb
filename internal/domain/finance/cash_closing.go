package finance

import (
	"time"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DifferenceStatus classifies the sign of a closing difference
type DifferenceStatus string

const (
	DifferenceStatusBalanced DifferenceStatus = "BALANCED" // Counted cash matches system cash
	DifferenceStatusSurplus  DifferenceStatus = "SURPLUS"  // More cash than expected
	DifferenceStatusShortage DifferenceStatus = "SHORTAGE" // Less cash than expected
)

// IsValid checks if the status is a valid DifferenceStatus
func (s DifferenceStatus) IsValid() bool {
	switch s {
	case DifferenceStatusBalanced, DifferenceStatusSurplus, DifferenceStatusShortage:
		return true
	}
	return false
}

// String returns the string representation of DifferenceStatus
func (s DifferenceStatus) String() string {
	return string(s)
}

// DifferenceStatusOf classifies a difference; amounts within the currency
// tolerance count as balanced
func DifferenceStatusOf(diff valueobject.Money) DifferenceStatus {
	switch {
	case diff.IsSettled():
		return DifferenceStatusBalanced
	case diff.IsPositive():
		return DifferenceStatusSurplus
	default:
		return DifferenceStatusShortage
	}
}

// ClosingInput carries the operator-entered figures of a closing
type ClosingInput struct {
	OpeningCash valueobject.Money
	ClosingCash valueobject.Money
	ExtraIncome valueobject.Money
	Notes       string
}

// CashClosing is the end-of-day reconciliation of the cash drawer.
// System cash is what the drawer should hold; the difference is what was
// counted minus that.
type CashClosing struct {
	shared.TenantAggregateRoot
	BusinessDate     valueobject.BusinessDate `json:"business_date"`
	Currency         valueobject.Currency     `json:"currency"`
	OpeningCash      decimal.Decimal          `json:"opening_cash"`
	ClosingCash      decimal.Decimal          `json:"closing_cash"`
	ExtraIncome      decimal.Decimal          `json:"extra_income"`
	TotalSales       decimal.Decimal          `json:"total_sales"`
	CashSales        decimal.Decimal          `json:"cash_sales"`
	CashExpenses     decimal.Decimal          `json:"cash_expenses"`
	SystemCash       decimal.Decimal          `json:"system_cash"`
	Difference       decimal.Decimal          `json:"difference"`
	DifferenceStatus DifferenceStatus         `json:"difference_status"`
	TransactionCount int                      `json:"transaction_count"`
	Notes            string                   `json:"notes"`
	ClosedAt         time.Time                `json:"closed_at"`
}

// NewCashClosing creates a closing for summary's date. today is the current
// business date in the store's time zone; closings for later dates are rejected.
func NewCashClosing(
	tenantID uuid.UUID,
	summary *DailySummary,
	input ClosingInput,
	today valueobject.BusinessDate,
) (*CashClosing, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if summary == nil || summary.BusinessDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Closing date is required")
	}
	if summary.BusinessDate.After(today) {
		return nil, shared.NewDomainError("INVALID_DATE", "Closing date cannot be in the future")
	}
	currency := summary.Currency
	for _, m := range []valueobject.Money{input.OpeningCash, input.ClosingCash, input.ExtraIncome} {
		if m.Currency() != currency {
			return nil, shared.NewDomainError("INVALID_CURRENCY", "Closing amounts must be in "+string(currency))
		}
		if m.IsNegative() {
			return nil, shared.NewDomainError(ErrCodeInvalidAmount, "Closing amounts cannot be negative")
		}
	}
	if len(input.Notes) > 500 {
		return nil, shared.NewDomainError(ErrCodeInvalidNotes, "Notes cannot exceed 500 characters")
	}

	systemCash := input.OpeningCash.Amount().
		Add(summary.CashSales).
		Add(input.ExtraIncome.Amount()).
		Sub(summary.CashExpenses)
	difference := input.ClosingCash.Amount().Sub(systemCash)

	closing := &CashClosing{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BusinessDate:        summary.BusinessDate,
		Currency:            currency,
		OpeningCash:         input.OpeningCash.Amount(),
		ClosingCash:         input.ClosingCash.Amount(),
		ExtraIncome:         input.ExtraIncome.Amount(),
		TotalSales:          summary.TotalSales,
		CashSales:           summary.CashSales,
		CashExpenses:        summary.CashExpenses,
		SystemCash:          systemCash,
		Difference:          difference,
		DifferenceStatus:    DifferenceStatusOf(valueobject.MustMoney(difference, currency)),
		TransactionCount:    summary.TransactionCount,
		Notes:               input.Notes,
		ClosedAt:            time.Now(),
	}

	closing.AddDomainEvent(NewCashClosingCreatedEvent(closing))

	return closing, nil
}

// DifferenceMoney returns the difference as Money
func (c *CashClosing) DifferenceMoney() valueobject.Money {
	return valueobject.MustMoney(c.Difference, c.Currency)
}

// IsBalanced reports whether counted cash matched system cash
func (c *CashClosing) IsBalanced() bool {
	return c.DifferenceStatus == DifferenceStatusBalanced
}
