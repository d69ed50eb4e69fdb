package finance

import (
	"context"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockCashClosingRepository struct {
	mock.Mock
}

func (m *MockCashClosingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CashClosing, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CashClosing), args.Error(1)
}

func (m *MockCashClosingRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*finance.CashClosing, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CashClosing), args.Error(1)
}

func (m *MockCashClosingRepository) FindLatest(ctx context.Context, tenantID uuid.UUID) (*finance.CashClosing, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CashClosing), args.Error(1)
}

func (m *MockCashClosingRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to valueobject.BusinessDate, filter shared.Filter) ([]finance.CashClosing, int64, error) {
	args := m.Called(ctx, tenantID, from, to, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]finance.CashClosing), args.Get(1).(int64), args.Error(2)
}

func (m *MockCashClosingRepository) ExistsByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (bool, error) {
	args := m.Called(ctx, tenantID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockCashClosingRepository) Save(ctx context.Context, closing *finance.CashClosing) error {
	args := m.Called(ctx, closing)
	return args.Error(0)
}

func (m *MockCashClosingRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockSalePaymentRepository struct {
	mock.Mock
}

func (m *MockSalePaymentRepository) SaveBatch(ctx context.Context, payments []finance.SalePayment) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

func (m *MockSalePaymentRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) ([]finance.SalePayment, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.SalePayment), args.Error(1)
}

func (m *MockSalePaymentRepository) SummarizeDay(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*finance.PaymentDaySummary, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.PaymentDaySummary), args.Error(1)
}

func (m *MockSalePaymentRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockCashExpenseRepository struct {
	mock.Mock
}

func (m *MockCashExpenseRepository) Save(ctx context.Context, expense *finance.CashExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockCashExpenseRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) ([]finance.CashExpense, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.CashExpense), args.Error(1)
}

func (m *MockCashExpenseRepository) SumByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (decimal.Decimal, int, error) {
	args := m.Called(ctx, tenantID, date)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

type MockSettlementSessionRepository struct {
	mock.Mock
}

func (m *MockSettlementSessionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.SettlementSession, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.SettlementSession), args.Error(1)
}

func (m *MockSettlementSessionRepository) Save(ctx context.Context, session *finance.SettlementSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSettlementSessionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockClosingExporter struct {
	mock.Mock
}

func (m *MockClosingExporter) ExportClosings(closings []finance.CashClosing) ([]byte, error) {
	args := m.Called(closings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
