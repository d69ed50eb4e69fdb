package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxExportDays bounds the date range of a closing export
const maxExportDays = 366

// ClosingExporter renders closings into a downloadable document
type ClosingExporter interface {
	ExportClosings(closings []finance.CashClosing) ([]byte, error)
}

// CashClosingService provides daily summary, closing and expense operations
type CashClosingService struct {
	closingRepo    finance.CashClosingRepository
	paymentRepo    finance.SalePaymentRepository
	expenseRepo    finance.CashExpenseRepository
	alertService   *finance.ClosingAlertService
	currency       valueobject.Currency
	eventPublisher shared.EventPublisher
	exporter       ClosingExporter
	logger         *zap.Logger
	now            func() time.Time
}

// NewCashClosingService creates a new CashClosingService
func NewCashClosingService(
	closingRepo finance.CashClosingRepository,
	paymentRepo finance.SalePaymentRepository,
	expenseRepo finance.CashExpenseRepository,
	alertService *finance.ClosingAlertService,
	currency valueobject.Currency,
) *CashClosingService {
	return &CashClosingService{
		closingRepo:  closingRepo,
		paymentRepo:  paymentRepo,
		expenseRepo:  expenseRepo,
		alertService: alertService,
		currency:     currency,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CashClosingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetExporter sets the closing exporter
func (s *CashClosingService) SetExporter(exporter ClosingExporter) {
	s.exporter = exporter
}

// SetLogger sets the logger
func (s *CashClosingService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock overrides the time source
func (s *CashClosingService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Today returns the current business date in the store's time zone
func (s *CashClosingService) Today() valueobject.BusinessDate {
	return s.alertService.Today(s.now())
}

// parseDateOrToday parses an ISO date; empty means today
func (s *CashClosingService) parseDateOrToday(value string) (valueobject.BusinessDate, error) {
	if value == "" {
		return s.Today(), nil
	}
	date, err := valueobject.ParseBusinessDate(value)
	if err != nil {
		return valueobject.BusinessDate{}, shared.NewDomainError("INVALID_DATE", err.Error())
	}
	return date, nil
}

func (s *CashClosingService) money(amount decimal.Decimal) (valueobject.Money, error) {
	m, err := valueobject.NewMoney(amount, s.currency)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	return m, nil
}

// summarize builds the daily summary from stored payments and expenses
func (s *CashClosingService) summarize(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*finance.DailySummary, error) {
	payments, err := s.paymentRepo.SummarizeDay(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sale payments: %w", err)
	}
	expenses, count, err := s.expenseRepo.SumByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash expenses: %w", err)
	}
	return finance.NewDailySummary(date, s.currency, payments, expenses, count), nil
}

// GetDailySummary returns the sales and cash movement of a business date
func (s *CashClosingService) GetDailySummary(ctx context.Context, tenantID uuid.UUID, dateValue string) (*DailySummaryResponse, error) {
	date, err := s.parseDateOrToday(dateValue)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	closed, err := s.closingRepo.ExistsByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check closing: %w", err)
	}

	return toDailySummaryResponse(summary, closed), nil
}

// CurrentSales returns today's accumulated sales for the alert monitor
func (s *CashClosingService) CurrentSales(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	payments, err := s.paymentRepo.SummarizeDay(ctx, tenantID, s.Today())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to summarize sale payments: %w", err)
	}
	return finance.NewDailySummary(s.Today(), s.currency, payments, decimal.Zero, 0).TotalSales, nil
}

// CreateClosing closes a business date
func (s *CashClosingService) CreateClosing(ctx context.Context, tenantID uuid.UUID, req CreateClosingRequest) (*CashClosingResponse, error) {
	date, err := valueobject.ParseBusinessDate(req.BusinessDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", err.Error())
	}

	exists, err := s.closingRepo.ExistsByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check closing: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Cash closing for %s already exists", date))
	}

	summary, err := s.summarize(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}

	opening, err := s.money(req.OpeningCash)
	if err != nil {
		return nil, err
	}
	counted, err := s.money(req.ClosingCash)
	if err != nil {
		return nil, err
	}
	extra, err := s.money(req.ExtraIncome)
	if err != nil {
		return nil, err
	}

	closing, err := finance.NewCashClosing(tenantID, summary, finance.ClosingInput{
		OpeningCash: opening,
		ClosingCash: counted,
		ExtraIncome: extra,
		Notes:       req.Notes,
	}, s.Today())
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		closing.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.closingRepo.Save(ctx, closing); err != nil {
		return nil, err
	}

	classification := s.alertService.ClassifyDifference(closing.DifferenceMoney())
	s.logger.Info("cash closing created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("business_date", date.String()),
		zap.String("difference", closing.Difference.String()),
		zap.String("difference_status", closing.DifferenceStatus.String()),
		zap.Bool("large_difference", classification.IsLarge),
	)

	s.publishDomainEvents(ctx, &closing.BaseAggregateRoot)

	return toCashClosingResponse(closing, classification.IsLarge), nil
}

// GetLatestClosing returns the most recent closing, or nil when the tenant has none
func (s *CashClosingService) GetLatestClosing(ctx context.Context, tenantID uuid.UUID) (*CashClosingResponse, error) {
	closing, err := s.LatestClosing(ctx, tenantID)
	if err != nil || closing == nil {
		return nil, err
	}
	return s.toResponse(closing), nil
}

// LatestClosing returns the most recent closing aggregate, or nil
func (s *CashClosingService) LatestClosing(ctx context.Context, tenantID uuid.UUID) (*finance.CashClosing, error) {
	closing, err := s.closingRepo.FindLatest(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return closing, nil
}

// GetClosing returns a closing by ID
func (s *CashClosingService) GetClosing(ctx context.Context, tenantID, id uuid.UUID) (*CashClosingResponse, error) {
	closing, err := s.closingRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(closing), nil
}

// ListClosings lists closings in a date range, newest first.
// The range defaults to the last 31 days.
func (s *CashClosingService) ListClosings(ctx context.Context, tenantID uuid.UUID, filter ClosingListFilter) ([]CashClosingResponse, int64, error) {
	from, to, err := s.resolveRange(filter.From, filter.To, 30)
	if err != nil {
		return nil, 0, err
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}

	closings, total, err := s.closingRepo.FindByDateRange(ctx, tenantID, from, to, f)
	if err != nil {
		return nil, 0, err
	}

	result := make([]CashClosingResponse, 0, len(closings))
	for i := range closings {
		result = append(result, *s.toResponse(&closings[i]))
	}
	return result, total, nil
}

// ExportClosings renders the closings of a date range as a spreadsheet
func (s *CashClosingService) ExportClosings(ctx context.Context, tenantID uuid.UUID, fromValue, toValue string) ([]byte, error) {
	if s.exporter == nil {
		return nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "Closing export is not configured")
	}
	from, to, err := s.resolveRange(fromValue, toValue, 30)
	if err != nil {
		return nil, err
	}
	if from.DaysUntil(to) > maxExportDays {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", fmt.Sprintf("Export range cannot exceed %d days", maxExportDays))
	}

	f := shared.Filter{Page: 1, PageSize: maxExportDays + 1, OrderDir: "asc"}
	closings, _, err := s.closingRepo.FindByDateRange(ctx, tenantID, from, to, f)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.ExportClosings(closings)
	if err != nil {
		return nil, fmt.Errorf("failed to export closings: %w", err)
	}
	return data, nil
}

// RecordExpense records a petty-cash expense
func (s *CashClosingService) RecordExpense(ctx context.Context, tenantID uuid.UUID, req RecordExpenseRequest) (*CashExpenseResponse, error) {
	date, err := s.parseDateOrToday(req.BusinessDate)
	if err != nil {
		return nil, err
	}
	closed, err := s.closingRepo.ExistsByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check closing: %w", err)
	}
	if closed {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Business date %s is already closed", date))
	}

	amount, err := s.money(req.Amount)
	if err != nil {
		return nil, err
	}
	expense, err := finance.NewCashExpense(tenantID, date, amount, req.Description, s.Today())
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		expense.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	return toCashExpenseResponse(expense), nil
}

// ListExpenses lists the expenses of a business date
func (s *CashClosingService) ListExpenses(ctx context.Context, tenantID uuid.UUID, dateValue string) ([]CashExpenseResponse, error) {
	date, err := s.parseDateOrToday(dateValue)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindByDate(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	result := make([]CashExpenseResponse, 0, len(expenses))
	for i := range expenses {
		result = append(result, *toCashExpenseResponse(&expenses[i]))
	}
	return result, nil
}

// resolveRange parses from/to, defaulting to the span ending today
func (s *CashClosingService) resolveRange(fromValue, toValue string, defaultDays int) (valueobject.BusinessDate, valueobject.BusinessDate, error) {
	to, err := s.parseDateOrToday(toValue)
	if err != nil {
		return valueobject.BusinessDate{}, valueobject.BusinessDate{}, err
	}
	from := to.AddDays(-defaultDays)
	if fromValue != "" {
		from, err = valueobject.ParseBusinessDate(fromValue)
		if err != nil {
			return valueobject.BusinessDate{}, valueobject.BusinessDate{}, shared.NewDomainError("INVALID_DATE", err.Error())
		}
	}
	if from.After(to) {
		return valueobject.BusinessDate{}, valueobject.BusinessDate{}, shared.NewDomainError("INVALID_DATE_RANGE", "from must not be after to")
	}
	return from, to, nil
}

func (s *CashClosingService) toResponse(c *finance.CashClosing) *CashClosingResponse {
	return toCashClosingResponse(c, s.alertService.ClassifyDifference(c.DifferenceMoney()).IsLarge)
}

// publishDomainEvents publishes and clears the pending events of an aggregate
func (s *CashClosingService) publishDomainEvents(ctx context.Context, aggregate *shared.BaseAggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
