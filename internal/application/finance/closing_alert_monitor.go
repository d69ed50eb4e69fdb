package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClosingAlertSource supplies the inputs of an alert evaluation
type ClosingAlertSource interface {
	LatestClosing(ctx context.Context, tenantID uuid.UUID) (*finance.CashClosing, error)
	CurrentSales(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}

// TenantLister lists the tenants known to a store
type TenantLister interface {
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ClosingAlertMonitor hosts the alert evaluation. It keeps the latest alert
// set per tenant and replaces it wholesale on every refresh.
//
// Refreshes are triggered by closing/settlement events and by the periodic
// scheduler. Refreshes of one tenant run one at a time, so a set is never
// replaced by an evaluation that started earlier. It implements
// shared.EventHandler.
type ClosingAlertMonitor struct {
	alertService *finance.ClosingAlertService
	source       ClosingAlertSource
	tenants      []TenantLister
	logger       *zap.Logger
	now          func() time.Time

	mu    sync.RWMutex
	sets  map[uuid.UUID]*AlertSetResponse
	locks map[uuid.UUID]*sync.Mutex
}

// NewClosingAlertMonitor creates a new ClosingAlertMonitor
func NewClosingAlertMonitor(
	alertService *finance.ClosingAlertService,
	source ClosingAlertSource,
	logger *zap.Logger,
	tenants ...TenantLister,
) *ClosingAlertMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClosingAlertMonitor{
		alertService: alertService,
		source:       source,
		tenants:      tenants,
		logger:       logger,
		now:          time.Now,
		sets:         make(map[uuid.UUID]*AlertSetResponse),
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// SetClock overrides the time source
func (m *ClosingAlertMonitor) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// Refresh re-evaluates the alerts of a tenant and replaces its current set
func (m *ClosingAlertMonitor) Refresh(ctx context.Context, tenantID uuid.UUID) (*AlertSetResponse, error) {
	lock := m.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := m.source.LatestClosing(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest closing: %w", err)
	}
	sales, err := m.source.CurrentSales(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current sales: %w", err)
	}

	now := m.now()
	alerts := m.alertService.Evaluate(now, finance.SnapshotOf(latest), sales)
	set := newAlertSetResponse(tenantID, now, alerts)

	m.mu.Lock()
	m.sets[tenantID] = set
	m.mu.Unlock()

	m.logger.Debug("closing alerts refreshed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("alerts", len(alerts)),
		zap.Int("errors", set.ErrorCount),
	)
	return set, nil
}

// tenantLock returns the mutex serializing refreshes of a tenant
func (m *ClosingAlertMonitor) tenantLock(tenantID uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[tenantID] = lock
	}
	return lock
}

// Current returns the last alert set of a tenant, evaluating it first when
// none exists yet or refresh is requested
func (m *ClosingAlertMonitor) Current(ctx context.Context, tenantID uuid.UUID, refresh bool) (*AlertSetResponse, error) {
	if !refresh {
		m.mu.RLock()
		set, ok := m.sets[tenantID]
		m.mu.RUnlock()
		if ok {
			return set, nil
		}
	}
	return m.Refresh(ctx, tenantID)
}

// RefreshAll refreshes every known tenant. A failing tenant does not stop
// the others; the joined error is returned with the number refreshed.
func (m *ClosingAlertMonitor) RefreshAll(ctx context.Context) (int, error) {
	ids, err := m.tenantIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := m.Refresh(ctx, id); err != nil {
			m.logger.Warn("failed to refresh closing alerts",
				zap.String("tenant_id", id.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

// tenantIDs merges the tenants of all listers with the tenants already tracked
func (m *ClosingAlertMonitor) tenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, lister := range m.tenants {
		listed, err := lister.ListTenantIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tenants: %w", err)
		}
		for _, id := range listed {
			add(id)
		}
	}

	m.mu.RLock()
	for id := range m.sets {
		add(id)
	}
	m.mu.RUnlock()

	return ids, nil
}

// EventTypes returns the event types this handler is interested in
func (m *ClosingAlertMonitor) EventTypes() []string {
	return []string{finance.EventTypeCashClosingCreated, finance.EventTypeSettlementConfirmed}
}

// Handle re-evaluates the alerts of the event's tenant
func (m *ClosingAlertMonitor) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.logger.Debug("refreshing closing alerts on event",
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
	)
	_, err := m.Refresh(ctx, event.TenantID())
	return err
}
