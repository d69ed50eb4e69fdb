package telemetry

import (
	"context"
	"testing"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), config.TelemetryConfig{Enabled: false}, "cashdesk", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("test"))

	l := zap.NewNop()
	assert.Same(t, l, p.WrapLogger(l))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestCashMetrics_Handle(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewCashMetrics(provider.Meter("cashdesk"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		finance.EventTypeCashClosingCreated,
		finance.EventTypeSettlementConfirmed,
	}, m.EventTypes())

	tenantID := uuid.New()
	closingID := uuid.New()
	closing := &finance.CashClosingCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(finance.EventTypeCashClosingCreated, "CashClosing", closingID, tenantID),
		ClosingID:        closingID,
		Difference:       decimal.NewFromInt(-300),
		DifferenceStatus: finance.DifferenceStatusShortage,
	}
	sessionID := uuid.New()
	settled := &finance.SettlementConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(finance.EventTypeSettlementConfirmed, "SettlementSession", sessionID, tenantID),
		SessionID:       sessionID,
		TotalTarget:     decimal.NewFromInt(1000),
		Payments: []finance.PaymentEntry{
			{ID: uuid.New(), Method: finance.PaymentMethodCash, Amount: decimal.NewFromInt(600)},
			{ID: uuid.New(), Method: finance.PaymentMethodDebitCard, Amount: decimal.NewFromInt(400)},
		},
	}

	require.NoError(t, m.Handle(ctx, closing))
	require.NoError(t, m.Handle(ctx, settled))

	metrics := collect(t, reader)

	closings, ok := metrics["cashdesk.closings.created"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, closings.DataPoints, 1)
	assert.Equal(t, int64(1), closings.DataPoints[0].Value)
	status, _ := closings.DataPoints[0].Attributes.Value(attrDifferenceStatus)
	assert.Equal(t, "SHORTAGE", status.AsString())

	diff, ok := metrics["cashdesk.closings.difference"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, diff.DataPoints, 1)
	assert.Equal(t, 300.0, diff.DataPoints[0].Sum)

	settlements, ok := metrics["cashdesk.settlements.confirmed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, settlements.DataPoints, 1)
	assert.Equal(t, int64(1), settlements.DataPoints[0].Value)

	collected, ok := metrics["cashdesk.payments.amount"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	byMethod := make(map[string]float64)
	for _, dp := range collected.DataPoints {
		method, _ := dp.Attributes.Value(attrPaymentMethod)
		byMethod[method.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]float64{"CASH": 600, "DEBIT_CARD": 400}, byMethod)
}

func TestInstrumentGorm(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, InstrumentGorm(db, "sqlite"))
	assert.Error(t, InstrumentGorm(db, "sqlite"), "registering the plugin twice fails")
}

func TestProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(false, "", "cashdesk", nil)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(true, "", "cashdesk", zap.NewNop())
	assert.Error(t, err)
}
