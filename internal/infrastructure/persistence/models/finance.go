package models

import (
	"fmt"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business dates are stored as YYYY-MM-DD strings so that range queries
// and ordering behave the same on PostgreSQL and SQLite.

// CashClosingModel is the persistence model for the CashClosing aggregate root.
// A tenant closes a business date at most once.
type CashClosingModel struct {
	AggregateModel
	TenantID         uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_closing_tenant_date,priority:1"`
	BusinessDate     string                   `gorm:"type:varchar(10);not null;uniqueIndex:idx_closing_tenant_date,priority:2"`
	Currency         string                   `gorm:"type:varchar(3);not null"`
	OpeningCash      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	ClosingCash      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	ExtraIncome      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TotalSales       decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	CashSales        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	CashExpenses     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	SystemCash       decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Difference       decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	DifferenceStatus finance.DifferenceStatus `gorm:"type:varchar(10);not null"`
	TransactionCount int                      `gorm:"not null"`
	Notes            string                   `gorm:"type:varchar(500)"`
	ClosedAt         time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashClosingModel) TableName() string {
	return "cash_closings"
}

// ToDomain converts the persistence model to a domain CashClosing.
func (m *CashClosingModel) ToDomain() (*finance.CashClosing, error) {
	date, err := valueobject.ParseBusinessDate(m.BusinessDate)
	if err != nil {
		return nil, fmt.Errorf("cash closing %s: %w", m.ID, err)
	}
	return &finance.CashClosing{
		TenantAggregateRoot: m.tenantRoot(m.TenantID),
		BusinessDate:        date,
		Currency:            valueobject.Currency(m.Currency),
		OpeningCash:         m.OpeningCash,
		ClosingCash:         m.ClosingCash,
		ExtraIncome:         m.ExtraIncome,
		TotalSales:          m.TotalSales,
		CashSales:           m.CashSales,
		CashExpenses:        m.CashExpenses,
		SystemCash:          m.SystemCash,
		Difference:          m.Difference,
		DifferenceStatus:    m.DifferenceStatus,
		TransactionCount:    m.TransactionCount,
		Notes:               m.Notes,
		ClosedAt:            m.ClosedAt,
	}, nil
}

// CashClosingModelFromDomain creates a new persistence model from domain.
func CashClosingModelFromDomain(c *finance.CashClosing) *CashClosingModel {
	m := &CashClosingModel{
		TenantID:         c.TenantID,
		BusinessDate:     c.BusinessDate.String(),
		Currency:         string(c.Currency),
		OpeningCash:      c.OpeningCash,
		ClosingCash:      c.ClosingCash,
		ExtraIncome:      c.ExtraIncome,
		TotalSales:       c.TotalSales,
		CashSales:        c.CashSales,
		CashExpenses:     c.CashExpenses,
		SystemCash:       c.SystemCash,
		Difference:       c.Difference,
		DifferenceStatus: c.DifferenceStatus,
		TransactionCount: c.TransactionCount,
		Notes:            c.Notes,
		ClosedAt:         c.ClosedAt,
	}
	m.fromTenantRoot(c.TenantAggregateRoot)
	return m
}

// SalePaymentModel is the persistence model for a confirmed sale payment.
// The primary key is the settlement entry id, so replaying a confirmation
// cannot insert the same payment twice.
type SalePaymentModel struct {
	BaseModel
	TenantID      uuid.UUID             `gorm:"type:uuid;not null;index:idx_sale_payment_tenant_date,priority:1"`
	BusinessDate  string                `gorm:"type:varchar(10);not null;index:idx_sale_payment_tenant_date,priority:2"`
	SessionID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	SaleReference string                `gorm:"type:varchar(64)"`
	Method        finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency      string                `gorm:"type:varchar(3);not null"`
	Note          string                `gorm:"type:varchar(255)"`
	PaidAt        time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalePaymentModel) TableName() string {
	return "sale_payments"
}

// ToDomain converts the persistence model to a domain SalePayment.
func (m *SalePaymentModel) ToDomain() (finance.SalePayment, error) {
	date, err := valueobject.ParseBusinessDate(m.BusinessDate)
	if err != nil {
		return finance.SalePayment{}, fmt.Errorf("sale payment %s: %w", m.ID, err)
	}
	return finance.SalePayment{
		BaseEntity:    m.BaseModel.toDomain(),
		TenantID:      m.TenantID,
		SessionID:     m.SessionID,
		SaleReference: m.SaleReference,
		Method:        m.Method,
		Amount:        m.Amount,
		Currency:      valueobject.Currency(m.Currency),
		Note:          m.Note,
		BusinessDate:  date,
		PaidAt:        m.PaidAt,
	}, nil
}

// SalePaymentModelFromDomain creates a new persistence model from domain.
func SalePaymentModelFromDomain(p *finance.SalePayment) *SalePaymentModel {
	m := &SalePaymentModel{
		TenantID:      p.TenantID,
		BusinessDate:  p.BusinessDate.String(),
		SessionID:     p.SessionID,
		SaleReference: p.SaleReference,
		Method:        p.Method,
		Amount:        p.Amount,
		Currency:      string(p.Currency),
		Note:          p.Note,
		PaidAt:        p.PaidAt,
	}
	m.BaseModel.fromDomain(p.BaseEntity)
	return m
}

// CashExpenseModel is the persistence model for the CashExpense aggregate root.
type CashExpenseModel struct {
	AggregateModel
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_cash_expense_tenant_date,priority:1"`
	BusinessDate string          `gorm:"type:varchar(10);not null;index:idx_cash_expense_tenant_date,priority:2"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description  string          `gorm:"type:varchar(500);not null"`
	SpentAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashExpenseModel) TableName() string {
	return "cash_expenses"
}

// ToDomain converts the persistence model to a domain CashExpense.
func (m *CashExpenseModel) ToDomain() (*finance.CashExpense, error) {
	date, err := valueobject.ParseBusinessDate(m.BusinessDate)
	if err != nil {
		return nil, fmt.Errorf("cash expense %s: %w", m.ID, err)
	}
	return &finance.CashExpense{
		TenantAggregateRoot: m.tenantRoot(m.TenantID),
		BusinessDate:        date,
		Currency:            valueobject.Currency(m.Currency),
		Amount:              m.Amount,
		Description:         m.Description,
		SpentAt:             m.SpentAt,
	}, nil
}

// CashExpenseModelFromDomain creates a new persistence model from domain.
func CashExpenseModelFromDomain(e *finance.CashExpense) *CashExpenseModel {
	m := &CashExpenseModel{
		TenantID:     e.TenantID,
		BusinessDate: e.BusinessDate.String(),
		Currency:     string(e.Currency),
		Amount:       e.Amount,
		Description:  e.Description,
		SpentAt:      e.SpentAt,
	}
	m.fromTenantRoot(e.TenantAggregateRoot)
	return m
}

// All returns every model managed by auto-migration.
func All() []any {
	return []any{&CashClosingModel{}, &SalePaymentModel{}, &CashExpenseModel{}}
}
