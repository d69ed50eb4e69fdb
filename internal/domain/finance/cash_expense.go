package finance

import (
	"time"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashExpense is money taken out of the drawer during the day.
// It lowers the system cash of that day's closing.
type CashExpense struct {
	shared.TenantAggregateRoot
	BusinessDate valueobject.BusinessDate `json:"business_date"`
	Currency     valueobject.Currency     `json:"currency"`
	Amount       decimal.Decimal          `json:"amount"`
	Description  string                   `json:"description"`
	SpentAt      time.Time                `json:"spent_at"`
}

// NewCashExpense creates a new cash expense
func NewCashExpense(
	tenantID uuid.UUID,
	date valueobject.BusinessDate,
	amount valueobject.Money,
	description string,
	today valueobject.BusinessDate,
) (*CashExpense, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}
	if date.After(today) {
		return nil, shared.NewDomainError("INVALID_DATE", "Expense date cannot be in the future")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(ErrCodeInvalidAmount, "Amount must be positive")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	return &CashExpense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BusinessDate:        date,
		Currency:            amount.Currency(),
		Amount:              amount.Amount(),
		Description:         description,
		SpentAt:             time.Now(),
	}, nil
}
