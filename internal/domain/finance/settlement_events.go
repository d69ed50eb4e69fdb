package finance

import (
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeSettlementConfirmed is raised when a settlement session is confirmed
const EventTypeSettlementConfirmed = "SettlementConfirmed"

// SettlementConfirmedEvent carries the confirmed payments of a sale
type SettlementConfirmedEvent struct {
	shared.BaseDomainEvent
	SessionID     uuid.UUID       `json:"session_id"`
	SaleReference string          `json:"sale_reference"`
	TotalTarget   decimal.Decimal `json:"total_target"`
	Payments      []PaymentEntry  `json:"payments"`
}

// NewSettlementConfirmedEvent creates a new SettlementConfirmedEvent
func NewSettlementConfirmedEvent(s *SettlementSession, payments []PaymentEntry) *SettlementConfirmedEvent {
	return &SettlementConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementConfirmed, "SettlementSession", s.ID, s.TenantID),
		SessionID:       s.ID,
		SaleReference:   s.SaleReference,
		TotalTarget:     s.TotalTarget,
		Payments:        payments,
	}
}
