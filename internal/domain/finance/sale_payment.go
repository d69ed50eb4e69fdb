package finance

import (
	"time"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalePayment is a confirmed payment entry as recorded for the day's sales
type SalePayment struct {
	shared.BaseEntity
	TenantID      uuid.UUID                `json:"tenant_id"`
	SessionID     uuid.UUID                `json:"session_id"`
	SaleReference string                   `json:"sale_reference"`
	Method        PaymentMethod            `json:"method"`
	Amount        decimal.Decimal          `json:"amount"`
	Currency      valueobject.Currency     `json:"currency"`
	Note          string                   `json:"note"`
	BusinessDate  valueobject.BusinessDate `json:"business_date"`
	PaidAt        time.Time                `json:"paid_at"`
}

// NewSalePayments converts confirmed entries into sale payments dated on date.
// Entry IDs are kept so a retried submission cannot double count.
func NewSalePayments(s *SettlementSession, entries []PaymentEntry, date valueobject.BusinessDate, paidAt time.Time) []SalePayment {
	payments := make([]SalePayment, 0, len(entries))
	for _, e := range entries {
		payments = append(payments, SalePayment{
			BaseEntity: shared.BaseEntity{
				ID:        e.ID,
				CreatedAt: paidAt,
				UpdatedAt: paidAt,
			},
			TenantID:      s.TenantID,
			SessionID:     s.ID,
			SaleReference: s.SaleReference,
			Method:        e.Method,
			Amount:        e.Amount,
			Currency:      s.Currency,
			Note:          e.Note,
			BusinessDate:  date,
			PaidAt:        paidAt,
		})
	}
	return payments
}

// SummarizePayments aggregates payments per method, counting distinct sessions
// as transactions
func SummarizePayments(payments []SalePayment) *PaymentDaySummary {
	summary := &PaymentDaySummary{ByMethod: make(map[PaymentMethod]decimal.Decimal)}
	sessions := make(map[uuid.UUID]struct{})
	for _, p := range payments {
		summary.ByMethod[p.Method] = summary.ByMethod[p.Method].Add(p.Amount)
		sessions[p.SessionID] = struct{}{}
	}
	summary.TransactionCount = len(sessions)
	return summary
}
