package cache

import (
	"encoding/json"
	"fmt"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// SettlementStore is a settlement session repository that holds resources
type SettlementStore interface {
	finance.SettlementSessionRepository
	Close() error
}

func encodeSession(s *finance.SettlementSession) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settlement session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*finance.SettlementSession, error) {
	var s finance.SettlementSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settlement session: %w", err)
	}
	return &s, nil
}

// checkVersion enforces the optimistic lock: a new session must not exist
// yet and an existing one must be stored at exactly one version below.
func checkVersion(session *finance.SettlementSession, storedTenant uuid.UUID, storedVersion int, exists bool) error {
	if !exists {
		if session.Version != 1 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	}
	if storedTenant != session.TenantID || storedVersion != session.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
