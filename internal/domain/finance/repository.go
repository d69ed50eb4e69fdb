package finance

import (
	"context"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashClosingRepository defines the interface for cash closing persistence
type CashClosingRepository interface {
	// FindByID finds a closing by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CashClosing, error)

	// FindByDate finds the closing of a business date
	FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*CashClosing, error)

	// FindLatest returns the closing with the latest business date.
	// Returns shared.ErrNotFound when the tenant has never closed.
	FindLatest(ctx context.Context, tenantID uuid.UUID) (*CashClosing, error)

	// FindByDateRange lists closings in [from, to], newest first
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to valueobject.BusinessDate, filter shared.Filter) ([]CashClosing, int64, error)

	// ExistsByDate checks if a closing exists for the business date
	ExistsByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (bool, error)

	// Save creates a closing
	Save(ctx context.Context, closing *CashClosing) error

	// ListTenantIDs returns every tenant that has recorded a closing
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SalePaymentRepository defines the interface for confirmed sale payments
type SalePaymentRepository interface {
	// SaveBatch stores the payments of one confirmed settlement atomically
	SaveBatch(ctx context.Context, payments []SalePayment) error

	// FindByDate lists the payments of a business date in payment order
	FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) ([]SalePayment, error)

	// SummarizeDay aggregates the payments of a business date per method
	SummarizeDay(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*PaymentDaySummary, error)

	// ListTenantIDs returns every tenant that has recorded a sale payment
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CashExpenseRepository defines the interface for petty-cash expenses
type CashExpenseRepository interface {
	// Save creates an expense
	Save(ctx context.Context, expense *CashExpense) error

	// FindByDate lists the expenses of a business date
	FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) ([]CashExpense, error)

	// SumByDate returns the total and count of a business date's expenses
	SumByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (decimal.Decimal, int, error)
}

// SettlementSessionRepository stores open settlement sessions.
// Save uses optimistic locking on the session version: a session loaded at
// version N must be saved at version N+1, otherwise shared.ErrConcurrencyConflict.
type SettlementSessionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SettlementSession, error)
	Save(ctx context.Context, session *SettlementSession) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
