package finance

import (
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Daily summary / closings =====================

// DailySummaryResponse represents a day's sales and cash movement
type DailySummaryResponse struct {
	BusinessDate     string                     `json:"business_date"`
	Currency         string                     `json:"currency"`
	TotalSales       decimal.Decimal            `json:"total_sales"`
	CashSales        decimal.Decimal            `json:"cash_sales"`
	NonCashSales     decimal.Decimal            `json:"non_cash_sales"`
	SalesByMethod    map[string]decimal.Decimal `json:"sales_by_method"`
	TransactionCount int                        `json:"transaction_count"`
	CashExpenses     decimal.Decimal            `json:"cash_expenses"`
	ExpenseCount     int                        `json:"expense_count"`
	Closed           bool                       `json:"closed"`
}

// CashClosingResponse represents a cash closing in API responses
type CashClosingResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	BusinessDate      string          `json:"business_date"`
	Currency          string          `json:"currency"`
	OpeningCash       decimal.Decimal `json:"opening_cash"`
	ClosingCash       decimal.Decimal `json:"closing_cash"`
	ExtraIncome       decimal.Decimal `json:"extra_income"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	CashSales         decimal.Decimal `json:"cash_sales"`
	CashExpenses      decimal.Decimal `json:"cash_expenses"`
	SystemCash        decimal.Decimal `json:"system_cash"`
	Difference        decimal.Decimal `json:"difference"`
	DifferenceStatus  string          `json:"difference_status"`
	IsLargeDifference bool            `json:"is_large_difference"`
	TransactionCount  int             `json:"transaction_count"`
	Notes             string          `json:"notes,omitempty"`
	ClosedAt          time.Time       `json:"closed_at"`
	CreatedBy         *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CreateClosingRequest represents a request to close a business date
type CreateClosingRequest struct {
	BusinessDate string          `json:"business_date" binding:"required"`
	OpeningCash  decimal.Decimal `json:"opening_cash"`
	ClosingCash  decimal.Decimal `json:"closing_cash"`
	ExtraIncome  decimal.Decimal `json:"extra_income"`
	Notes        string          `json:"notes" binding:"max=500"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// ClosingListFilter defines the date range and paging of a closing list
type ClosingListFilter struct {
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CashExpenseResponse represents a cash expense in API responses
type CashExpenseResponse struct {
	ID           uuid.UUID       `json:"id"`
	BusinessDate string          `json:"business_date"`
	Currency     string          `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	SpentAt      time.Time       `json:"spent_at"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
}

// RecordExpenseRequest represents a request to record a cash expense
type RecordExpenseRequest struct {
	BusinessDate string          `json:"business_date"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description" binding:"required,max=500"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// ===================== Alerts =====================

// AlertSetResponse is the current alert set of a tenant
type AlertSetResponse struct {
	TenantID    uuid.UUID              `json:"tenant_id"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
	Alerts      []finance.ClosingAlert `json:"alerts"`
	ErrorCount  int                    `json:"error_count"`
	WarnCount   int                    `json:"warning_count"`
	InfoCount   int                    `json:"info_count"`
}

// ===================== Settlement =====================

// PaymentEntryResponse represents one payment of a settlement session
type PaymentEntryResponse struct {
	ID      uuid.UUID       `json:"id"`
	Method  string          `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note,omitempty"`
	AddedAt time.Time       `json:"added_at"`
}

// SettlementResponse represents a settlement session and its derived state
type SettlementResponse struct {
	ID            uuid.UUID              `json:"id"`
	SaleReference string                 `json:"sale_reference,omitempty"`
	Currency      string                 `json:"currency"`
	TotalTarget   decimal.Decimal        `json:"total_target"`
	TotalPaid     decimal.Decimal        `json:"total_paid"`
	Remaining     decimal.Decimal        `json:"remaining"`
	IsComplete    bool                   `json:"is_complete"`
	Status        string                 `json:"status"`
	Payments      []PaymentEntryResponse `json:"payments"`
	OpenedAt      time.Time              `json:"opened_at"`
	Version       int                    `json:"version"`
}

// OpenSettlementRequest represents a request to open a settlement session
type OpenSettlementRequest struct {
	SaleReference string          `json:"sale_reference" binding:"max=64"`
	TotalTarget   decimal.Decimal `json:"total_target"`
}

// AddPaymentRequest represents a request to add a payment to a session
type AddPaymentRequest struct {
	Method string          `json:"method" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" binding:"max=255"`
}

// ResetSettlementRequest represents a request to restart a session for a new total
type ResetSettlementRequest struct {
	TotalTarget decimal.Decimal `json:"total_target"`
}

// ConfirmSettlementResponse is returned once a settlement has been submitted
type ConfirmSettlementResponse struct {
	SessionID     uuid.UUID              `json:"session_id"`
	SaleReference string                 `json:"sale_reference,omitempty"`
	BusinessDate  string                 `json:"business_date"`
	TotalPaid     decimal.Decimal        `json:"total_paid"`
	Payments      []PaymentEntryResponse `json:"payments"`
	ConfirmedAt   time.Time              `json:"confirmed_at"`
}

func toDailySummaryResponse(s *finance.DailySummary, closed bool) *DailySummaryResponse {
	byMethod := make(map[string]decimal.Decimal, len(s.SalesByMethod))
	for m, amount := range s.SalesByMethod {
		byMethod[m.String()] = amount
	}
	return &DailySummaryResponse{
		BusinessDate:     s.BusinessDate.String(),
		Currency:         string(s.Currency),
		TotalSales:       s.TotalSales,
		CashSales:        s.CashSales,
		NonCashSales:     s.NonCashSales(),
		SalesByMethod:    byMethod,
		TransactionCount: s.TransactionCount,
		CashExpenses:     s.CashExpenses,
		ExpenseCount:     s.ExpenseCount,
		Closed:           closed,
	}
}

func toCashClosingResponse(c *finance.CashClosing, isLarge bool) *CashClosingResponse {
	return &CashClosingResponse{
		ID:                c.ID,
		TenantID:          c.TenantID,
		BusinessDate:      c.BusinessDate.String(),
		Currency:          string(c.Currency),
		OpeningCash:       c.OpeningCash,
		ClosingCash:       c.ClosingCash,
		ExtraIncome:       c.ExtraIncome,
		TotalSales:        c.TotalSales,
		CashSales:         c.CashSales,
		CashExpenses:      c.CashExpenses,
		SystemCash:        c.SystemCash,
		Difference:        c.Difference,
		DifferenceStatus:  c.DifferenceStatus.String(),
		IsLargeDifference: isLarge,
		TransactionCount:  c.TransactionCount,
		Notes:             c.Notes,
		ClosedAt:          c.ClosedAt,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
	}
}

func toCashExpenseResponse(e *finance.CashExpense) *CashExpenseResponse {
	return &CashExpenseResponse{
		ID:           e.ID,
		BusinessDate: e.BusinessDate.String(),
		Currency:     string(e.Currency),
		Amount:       e.Amount,
		Description:  e.Description,
		SpentAt:      e.SpentAt,
		CreatedBy:    e.CreatedBy,
	}
}

func toPaymentEntryResponses(entries []finance.PaymentEntry) []PaymentEntryResponse {
	result := make([]PaymentEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, PaymentEntryResponse{
			ID:      e.ID,
			Method:  e.Method.String(),
			Amount:  e.Amount,
			Note:    e.Note,
			AddedAt: e.AddedAt,
		})
	}
	return result
}

func toSettlementResponse(s *finance.SettlementSession) *SettlementResponse {
	state := s.State()
	return &SettlementResponse{
		ID:            s.ID,
		SaleReference: s.SaleReference,
		Currency:      string(s.Currency),
		TotalTarget:   state.TotalTarget,
		TotalPaid:     state.TotalPaid,
		Remaining:     state.Remaining,
		IsComplete:    state.IsComplete,
		Status:        string(state.Status),
		Payments:      toPaymentEntryResponses(s.Payments),
		OpenedAt:      s.OpenedAt,
		Version:       s.Version,
	}
}

func newAlertSetResponse(tenantID uuid.UUID, evaluatedAt time.Time, alerts []finance.ClosingAlert) *AlertSetResponse {
	if alerts == nil {
		alerts = []finance.ClosingAlert{}
	}
	resp := &AlertSetResponse{
		TenantID:    tenantID,
		EvaluatedAt: evaluatedAt,
		Alerts:      alerts,
	}
	for _, a := range alerts {
		switch a.Severity {
		case finance.AlertSeverityError:
			resp.ErrorCount++
		case finance.AlertSeverityWarning:
			resp.WarnCount++
		case finance.AlertSeverityInfo:
			resp.InfoCount++
		}
	}
	return resp
}
