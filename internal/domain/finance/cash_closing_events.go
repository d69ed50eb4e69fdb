package finance

import (
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeCashClosingCreated is raised when a day's cash is closed
const EventTypeCashClosingCreated = "CashClosingCreated"

// CashClosingCreatedEvent is raised when a new cash closing is recorded
type CashClosingCreatedEvent struct {
	shared.BaseDomainEvent
	ClosingID        uuid.UUID                `json:"closing_id"`
	BusinessDate     valueobject.BusinessDate `json:"business_date"`
	SystemCash       decimal.Decimal          `json:"system_cash"`
	ClosingCash      decimal.Decimal          `json:"closing_cash"`
	Difference       decimal.Decimal          `json:"difference"`
	DifferenceStatus DifferenceStatus         `json:"difference_status"`
}

// NewCashClosingCreatedEvent creates a new CashClosingCreatedEvent
func NewCashClosingCreatedEvent(c *CashClosing) *CashClosingCreatedEvent {
	return &CashClosingCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCashClosingCreated, "CashClosing", c.ID, c.TenantID),
		ClosingID:        c.ID,
		BusinessDate:     c.BusinessDate,
		SystemCash:       c.SystemCash,
		ClosingCash:      c.ClosingCash,
		Difference:       c.Difference,
		DifferenceStatus: c.DifferenceStatus,
	}
}
