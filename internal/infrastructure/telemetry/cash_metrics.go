package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrTenantID         = attribute.Key("tenant_id")
	attrDifferenceStatus = attribute.Key("difference_status")
	attrPaymentMethod    = attribute.Key("payment_method")
)

// CashMetrics records cash desk activity from domain events.
// It subscribes to the event bus like any other handler.
type CashMetrics struct {
	closings          metric.Int64Counter
	differences       metric.Float64Histogram
	settlements       metric.Int64Counter
	collectedByMethod metric.Float64Counter
}

// NewCashMetrics registers the instruments on meter
func NewCashMetrics(meter metric.Meter) (*CashMetrics, error) {
	closings, err := meter.Int64Counter("cashdesk.closings.created",
		metric.WithDescription("Cash closings recorded"),
		metric.WithUnit("{closing}"))
	if err != nil {
		return nil, fmt.Errorf("closings counter: %w", err)
	}
	differences, err := meter.Float64Histogram("cashdesk.closings.difference",
		metric.WithDescription("Absolute difference between counted and system cash"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, fmt.Errorf("difference histogram: %w", err)
	}
	settlements, err := meter.Int64Counter("cashdesk.settlements.confirmed",
		metric.WithDescription("Settlement sessions confirmed"),
		metric.WithUnit("{settlement}"))
	if err != nil {
		return nil, fmt.Errorf("settlements counter: %w", err)
	}
	collected, err := meter.Float64Counter("cashdesk.payments.amount",
		metric.WithDescription("Amount collected per payment method"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, fmt.Errorf("payments counter: %w", err)
	}
	return &CashMetrics{
		closings:          closings,
		differences:       differences,
		settlements:       settlements,
		collectedByMethod: collected,
	}, nil
}

// EventTypes implements shared.EventHandler
func (m *CashMetrics) EventTypes() []string {
	return []string{finance.EventTypeCashClosingCreated, finance.EventTypeSettlementConfirmed}
}

// Handle implements shared.EventHandler
func (m *CashMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := attrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *finance.CashClosingCreatedEvent:
		status := attrDifferenceStatus.String(e.DifferenceStatus.String())
		m.closings.Add(ctx, 1, metric.WithAttributes(tenant, status))
		m.differences.Record(ctx, e.Difference.Abs().InexactFloat64(), metric.WithAttributes(tenant, status))
	case *finance.SettlementConfirmedEvent:
		m.settlements.Add(ctx, 1, metric.WithAttributes(tenant))
		for _, p := range e.Payments {
			m.collectedByMethod.Add(ctx, p.Amount.InexactFloat64(),
				metric.WithAttributes(tenant, attrPaymentMethod.String(p.Method.String())))
		}
	}
	return nil
}
