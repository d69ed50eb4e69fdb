package finance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClosingAlertSource struct {
	mock.Mock
}

func (m *MockClosingAlertSource) LatestClosing(ctx context.Context, tenantID uuid.UUID) (*finance.CashClosing, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CashClosing), args.Error(1)
}

func (m *MockClosingAlertSource) CurrentSales(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func newTestMonitor(source *MockClosingAlertSource, listers ...TenantLister) *ClosingAlertMonitor {
	m := NewClosingAlertMonitor(finance.NewClosingAlertService(finance.WithLocation(time.UTC)), source, nil, listers...)
	m.SetClock(func() time.Time { return fixedNow })
	return m
}

func TestClosingAlertMonitor_Refresh(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	source := new(MockClosingAlertSource)
	source.On("LatestClosing", ctx, tenantID).Return(nil, nil)
	source.On("CurrentSales", ctx, tenantID).Return(d("500"), nil)

	monitor := newTestMonitor(source)
	set, err := monitor.Refresh(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, set.Alerts, 1)
	assert.Equal(t, finance.AlertKindMissing, set.Alerts[0].Kind)
	assert.Equal(t, 1, set.ErrorCount)
	assert.Equal(t, fixedNow, set.EvaluatedAt)

	current, err := monitor.Current(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Same(t, set, current)
	source.AssertNumberOfCalls(t, "LatestClosing", 1)
}

func TestClosingAlertMonitor_ReplacesSetWholesale(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	source := new(MockClosingAlertSource)
	source.On("LatestClosing", ctx, tenantID).Return(nil, nil).Once()
	source.On("CurrentSales", ctx, tenantID).Return(d("0"), nil)

	monitor := newTestMonitor(source)
	first, err := monitor.Current(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Len(t, first.Alerts, 1)

	closing := newTestClosing(t, tenantID, "2026-10-19", "0")
	source.On("LatestClosing", ctx, tenantID).Return(closing, nil)

	event := finance.NewCashClosingCreatedEvent(closing)
	require.NoError(t, monitor.Handle(ctx, event))

	current, err := monitor.Current(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Empty(t, current.Alerts)
	assert.NotSame(t, first, current)
}

type stubTenantLister struct {
	ids []uuid.UUID
	err error
}

func (s stubTenantLister) ListTenantIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func TestClosingAlertMonitor_RefreshAll(t *testing.T) {
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	source := new(MockClosingAlertSource)
	for _, id := range []uuid.UUID{a, b} {
		source.On("LatestClosing", ctx, id).Return(nil, nil)
		source.On("CurrentSales", ctx, id).Return(decimal.Zero, nil)
	}
	source.On("LatestClosing", ctx, c).Return(nil, errors.New("timeout"))

	monitor := newTestMonitor(source,
		stubTenantLister{ids: []uuid.UUID{a, b}},
		stubTenantLister{ids: []uuid.UUID{b, c, uuid.Nil}},
	)

	refreshed, err := monitor.RefreshAll(ctx)
	assert.Equal(t, 2, refreshed)
	assert.Error(t, err)

	set, err := monitor.Current(ctx, a, false)
	require.NoError(t, err)
	assert.Len(t, set.Alerts, 1)

	t.Run("lister failure", func(t *testing.T) {
		m := newTestMonitor(source, stubTenantLister{err: errors.New("db down")})
		_, err := m.RefreshAll(ctx)
		assert.Error(t, err)
	})
}

func TestClosingAlertMonitor_EventTypes(t *testing.T) {
	monitor := newTestMonitor(new(MockClosingAlertSource))
	assert.ElementsMatch(t, []string{
		finance.EventTypeCashClosingCreated,
		finance.EventTypeSettlementConfirmed,
	}, monitor.EventTypes())
}

func TestClosingAlertMonitor_ReminderAfterSale(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	yesterday := newTestClosing(t, tenantID, "2026-10-18", "0")

	source := new(MockClosingAlertSource)
	source.On("LatestClosing", ctx, tenantID).Return(yesterday, nil)
	source.On("CurrentSales", ctx, tenantID).Return(d("250"), nil)

	monitor := newTestMonitor(source)
	set, err := monitor.Refresh(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, set.Alerts, 1)
	assert.Equal(t, finance.AlertKindReminder, set.Alerts[0].Kind)
	assert.Equal(t, 1, set.InfoCount)
	assert.Equal(t, valueobject.MustParseBusinessDate("2026-10-18"), yesterday.BusinessDate)
}

// blockingAlertSource reports no closing on its first load and holds that
// load until released; later loads see the closing.
type blockingAlertSource struct {
	closing  *finance.CashClosing
	entered  chan struct{}
	release  chan struct{}
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *blockingAlertSource) LatestClosing(_ context.Context, _ uuid.UUID) (*finance.CashClosing, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if s.calls.Add(1) == 1 {
		close(s.entered)
		<-s.release
		return nil, nil
	}
	return s.closing, nil
}

func (s *blockingAlertSource) CurrentSales(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestClosingAlertMonitor_SerializesTenantRefreshes(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	source := &blockingAlertSource{
		closing: newTestClosing(t, tenantID, "2026-10-19", "0"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	monitor := NewClosingAlertMonitor(finance.NewClosingAlertService(finance.WithLocation(time.UTC)), source, nil)
	monitor.SetClock(func() time.Time { return fixedNow })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := monitor.Refresh(ctx, tenantID)
		assert.NoError(t, err)
	}()
	<-source.entered

	// the closing is saved and its event triggers a second refresh
	second := make(chan struct{})
	go func() {
		defer close(second)
		assert.NoError(t, monitor.Handle(ctx, finance.NewCashClosingCreatedEvent(source.closing)))
	}()

	select {
	case <-second:
	case <-time.After(50 * time.Millisecond):
	}
	close(source.release)
	wg.Wait()
	<-second

	set, err := monitor.Current(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Empty(t, set.Alerts)
	assert.Equal(t, int32(2), source.calls.Load())
	assert.Equal(t, int32(1), source.maxSeen.Load())

	t.Run("other tenants are not blocked", func(t *testing.T) {
		other := uuid.New()
		src := new(MockClosingAlertSource)
		src.On("LatestClosing", ctx, other).Return(nil, nil)
		src.On("CurrentSales", ctx, other).Return(decimal.Zero, nil)
		m := newTestMonitor(src)

		m.tenantLock(tenantID).Lock()
		defer m.tenantLock(tenantID).Unlock()

		set, err := m.Refresh(ctx, other)
		require.NoError(t, err)
		assert.Len(t, set.Alerts, 1)
	})
}
