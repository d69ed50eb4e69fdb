package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
)

type sessionEntry struct {
	tenantID  uuid.UUID
	version   int
	data      []byte
	expiresAt time.Time
}

// InMemorySettlementStore keeps open settlement sessions in process memory.
// Sessions are stored encoded so callers never share state with the store.
type InMemorySettlementStore struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]sessionEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySettlementStore creates a store whose sessions expire ttl after
// their last save, and starts the background sweeper.
func NewInMemorySettlementStore(ttl time.Duration) *InMemorySettlementStore {
	s := &InMemorySettlementStore{
		entries:  make(map[uuid.UUID]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// FindByID loads a live session of the tenant
func (s *InMemorySettlementStore) FindByID(_ context.Context, tenantID, id uuid.UUID) (*finance.SettlementSession, error) {
	s.mu.Lock()
	e, ok := s.live(id)
	s.mu.Unlock()
	if !ok || e.tenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return decodeSession(e.data)
}

// Save stores the session if its version follows the stored one
func (s *InMemorySettlementStore) Save(_ context.Context, session *finance.SettlementSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.live(session.ID)
	if err := checkVersion(session, current.tenantID, current.version, exists); err != nil {
		return err
	}
	s.entries[session.ID] = sessionEntry{
		tenantID:  session.TenantID,
		version:   session.Version,
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (s *InMemorySettlementStore) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok && e.tenantID == tenantID {
		delete(s.entries, id)
	}
	return nil
}

// Len returns the number of live sessions
func (s *InMemorySettlementStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.entries {
		if _, ok := s.live(id); ok {
			n++
		}
	}
	return n
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemorySettlementStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// live must be called with mu held
func (s *InMemorySettlementStore) live(id uuid.UUID) (sessionEntry, bool) {
	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return sessionEntry{}, false
	}
	return e, true
}

func (s *InMemorySettlementStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemorySettlementStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

var _ SettlementStore = (*InMemorySettlementStore)(nil)
