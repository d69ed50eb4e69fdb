package finance

import (
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AlertKind identifies which closing rule produced an alert
type AlertKind string

const (
	AlertKindMissing         AlertKind = "MISSING"
	AlertKindLargeDifference AlertKind = "LARGE_DIFFERENCE"
	AlertKindReminder        AlertKind = "REMINDER"
	AlertKindOverdue         AlertKind = "OVERDUE"
)

// AlertSeverity orders alerts by urgency
type AlertSeverity string

const (
	AlertSeverityError   AlertSeverity = "error"
	AlertSeverityWarning AlertSeverity = "warning"
	AlertSeverityInfo    AlertSeverity = "info"
)

// Rank returns the display rank of the severity; lower ranks come first
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityError:
		return 0
	case AlertSeverityWarning:
		return 1
	case AlertSeverityInfo:
		return 2
	default:
		return 3
	}
}

// IsValid checks if the severity is known
func (s AlertSeverity) IsValid() bool {
	return s.Rank() < 3
}

// ClosingSnapshot is the part of a closing record the alert rules read
type ClosingSnapshot struct {
	Date       valueobject.BusinessDate
	Difference decimal.Decimal
}

// SnapshotOf builds a snapshot from a persisted closing. Nil in, nil out.
func SnapshotOf(c *CashClosing) *ClosingSnapshot {
	if c == nil {
		return nil
	}
	return &ClosingSnapshot{
		Date:       c.BusinessDate,
		Difference: c.Difference,
	}
}

// ClosingAlert is an advisory produced by one evaluation. Only the payload
// fields of its kind are set.
type ClosingAlert struct {
	Kind       AlertKind     `json:"kind"`
	Severity   AlertSeverity `json:"severity"`
	Actionable bool          `json:"actionable"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`

	MissingDate  *valueobject.BusinessDate `json:"missing_date,omitempty"`
	ClosingDate  *valueobject.BusinessDate `json:"closing_date,omitempty"`
	Difference   *decimal.Decimal          `json:"difference,omitempty"`
	CurrentSales *decimal.Decimal          `json:"current_sales,omitempty"`
	DaysOverdue  int                       `json:"days_overdue,omitempty"`
}
