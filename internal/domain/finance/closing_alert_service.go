package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Default alert thresholds
const (
	DefaultLargeDifferenceThreshold = 10000
	DefaultReminderHour             = 18
	DefaultOverdueDays              = 3
)

// ClosingAlertService is a domain service that turns the latest closing and
// the running sales of the day into a set of closing alerts.
//
// Rules are evaluated independently and every match is emitted:
// 1. MISSING when there is no closing or the last one is older than yesterday
// 2. LARGE_DIFFERENCE when the last difference exceeds the threshold
// 3. REMINDER after the reminder hour when today has sales and no closing yet
// 4. OVERDUE when the last closing is more than N days old
//
// The service keeps no state. Callers decide when to re-evaluate.
type ClosingAlertService struct {
	largeDifferenceThreshold decimal.Decimal
	reminderHour             int
	overdueDays              int
	location                 *time.Location
}

// ClosingAlertServiceOption is a functional option for configuring ClosingAlertService
type ClosingAlertServiceOption func(*ClosingAlertService)

// WithLargeDifferenceThreshold sets the absolute difference above which a closing is flagged
func WithLargeDifferenceThreshold(threshold decimal.Decimal) ClosingAlertServiceOption {
	return func(s *ClosingAlertService) {
		if !threshold.IsNegative() {
			s.largeDifferenceThreshold = threshold
		}
	}
}

// WithReminderHour sets the local hour from which end-of-day reminders fire
func WithReminderHour(hour int) ClosingAlertServiceOption {
	return func(s *ClosingAlertService) {
		if hour >= 0 && hour <= 23 {
			s.reminderHour = hour
		}
	}
}

// WithOverdueDays sets how many days may pass after a closing before it is overdue
func WithOverdueDays(days int) ClosingAlertServiceOption {
	return func(s *ClosingAlertService) {
		if days > 0 {
			s.overdueDays = days
		}
	}
}

// WithLocation sets the store's local time zone
func WithLocation(loc *time.Location) ClosingAlertServiceOption {
	return func(s *ClosingAlertService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewClosingAlertService creates a new alert service with optional configuration
func NewClosingAlertService(opts ...ClosingAlertServiceOption) *ClosingAlertService {
	s := &ClosingAlertService{
		largeDifferenceThreshold: decimal.NewFromInt(DefaultLargeDifferenceThreshold),
		reminderHour:             DefaultReminderHour,
		overdueDays:              DefaultOverdueDays,
		location:                 time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LargeDifferenceThreshold returns the configured threshold
func (s *ClosingAlertService) LargeDifferenceThreshold() decimal.Decimal {
	return s.largeDifferenceThreshold
}

// Location returns the configured local time zone
func (s *ClosingAlertService) Location() *time.Location {
	return s.location
}

// Today returns the business date of now in the store's time zone
func (s *ClosingAlertService) Today(now time.Time) valueobject.BusinessDate {
	return valueobject.DateOf(now.In(s.location))
}

// Evaluate returns the alerts that hold at now, errors first, then warnings,
// then info. Rule order is kept within a severity.
func (s *ClosingAlertService) Evaluate(now time.Time, last *ClosingSnapshot, currentSales decimal.Decimal) []ClosingAlert {
	local := now.In(s.location)
	today := valueobject.DateOf(local)
	yesterday := today.AddDays(-1)

	alerts := make([]ClosingAlert, 0, 4)

	if last == nil || last.Date.Before(yesterday) {
		missing := yesterday
		alerts = append(alerts, ClosingAlert{
			Kind:        AlertKindMissing,
			Severity:    AlertSeverityError,
			Actionable:  true,
			Title:       "Missing cash closing",
			Message:     fmt.Sprintf("No cash closing recorded for %s", missing),
			MissingDate: &missing,
		})
	}

	if last != nil && last.Difference.Abs().GreaterThan(s.largeDifferenceThreshold) {
		diff := last.Difference
		date := last.Date
		alerts = append(alerts, ClosingAlert{
			Kind:        AlertKindLargeDifference,
			Severity:    AlertSeverityWarning,
			Actionable:  false,
			Title:       "Large cash difference",
			Message:     fmt.Sprintf("Closing of %s has a difference of %s", date, diff.String()),
			ClosingDate: &date,
			Difference:  &diff,
		})
	}

	if local.Hour() >= s.reminderHour && currentSales.IsPositive() && last != nil && last.Date.Before(today) {
		sales := currentSales
		alerts = append(alerts, ClosingAlert{
			Kind:         AlertKindReminder,
			Severity:     AlertSeverityInfo,
			Actionable:   true,
			Title:        "Close the cash drawer",
			Message:      fmt.Sprintf("Today's sales of %s are not closed yet", sales.String()),
			CurrentSales: &sales,
		})
	}

	if last != nil {
		if days := last.Date.DaysUntil(today); days > s.overdueDays {
			date := last.Date
			alerts = append(alerts, ClosingAlert{
				Kind:        AlertKindOverdue,
				Severity:    AlertSeverityError,
				Actionable:  true,
				Title:       "Cash closing overdue",
				Message:     fmt.Sprintf("Last cash closing was %d days ago", days),
				ClosingDate: &date,
				DaysOverdue: days,
			})
		}
	}

	SortAlerts(alerts)
	return alerts
}

// SortAlerts orders alerts by severity, keeping the relative order of equal severities
func SortAlerts(alerts []ClosingAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})
}

// ClassifyDifference classifies a closing difference against the currency
// tolerance and the large-difference threshold
func (s *ClosingAlertService) ClassifyDifference(diff valueobject.Money) DifferenceClassification {
	return DifferenceClassification{
		Status:  DifferenceStatusOf(diff),
		IsLarge: diff.Amount().Abs().GreaterThan(s.largeDifferenceThreshold),
	}
}

// DifferenceClassification is the result of ClassifyDifference
type DifferenceClassification struct {
	Status  DifferenceStatus `json:"status"`
	IsLarge bool             `json:"is_large"`
}
