package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementService drives settlement sessions: operators add and remove
// payments until the sale total is covered, then confirm.
type SettlementService struct {
	sessionRepo    finance.SettlementSessionRepository
	paymentRepo    finance.SalePaymentRepository
	closingRepo    finance.CashClosingRepository
	currency       valueobject.Currency
	location       *time.Location
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	sessionRepo finance.SettlementSessionRepository,
	paymentRepo finance.SalePaymentRepository,
	closingRepo finance.CashClosingRepository,
	currency valueobject.Currency,
	location *time.Location,
) *SettlementService {
	if location == nil {
		location = time.Local
	}
	return &SettlementService{
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
		closingRepo: closingRepo,
		currency:    currency,
		location:    location,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SettlementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger
func (s *SettlementService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock overrides the time source
func (s *SettlementService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SettlementService) target(amount decimal.Decimal) (valueobject.Money, error) {
	m, err := valueobject.NewMoney(amount, s.currency)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError(finance.ErrCodeInvalidTarget, err.Error())
	}
	return m, nil
}

// OpenSession opens a new empty session for a sale total
func (s *SettlementService) OpenSession(ctx context.Context, tenantID uuid.UUID, req OpenSettlementRequest) (*SettlementResponse, error) {
	target, err := s.target(req.TotalTarget)
	if err != nil {
		return nil, err
	}
	session, err := finance.NewSettlementSession(tenantID, req.SaleReference, target)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("settlement session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("sale_reference", session.SaleReference),
		zap.String("total_target", session.TotalTarget.String()),
	)
	return toSettlementResponse(session), nil
}

// GetSession returns a session and its derived state
func (s *SettlementService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SettlementResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return toSettlementResponse(session), nil
}

// AddPayment appends a payment to a session
func (s *SettlementService) AddPayment(ctx context.Context, tenantID, sessionID uuid.UUID, req AddPaymentRequest) (*SettlementResponse, error) {
	return s.mutate(ctx, tenantID, sessionID, func(session *finance.SettlementSession) (bool, error) {
		if _, err := session.AddPayment(finance.PaymentMethod(req.Method), req.Amount, req.Note); err != nil {
			return false, err
		}
		return true, nil
	})
}

// RemovePayment removes a payment from a session; an unknown payment ID is not an error
func (s *SettlementService) RemovePayment(ctx context.Context, tenantID, sessionID, paymentID uuid.UUID) (*SettlementResponse, error) {
	return s.mutate(ctx, tenantID, sessionID, func(session *finance.SettlementSession) (bool, error) {
		return session.RemovePayment(paymentID), nil
	})
}

// FillRemainder settles the outstanding balance with a single cash entry
func (s *SettlementService) FillRemainder(ctx context.Context, tenantID, sessionID uuid.UUID) (*SettlementResponse, error) {
	return s.mutate(ctx, tenantID, sessionID, func(session *finance.SettlementSession) (bool, error) {
		return session.FillRemainderAsCash() != nil, nil
	})
}

// ResetSession empties a session for a new sale total
func (s *SettlementService) ResetSession(ctx context.Context, tenantID, sessionID uuid.UUID, req ResetSettlementRequest) (*SettlementResponse, error) {
	target, err := s.target(req.TotalTarget)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, sessionID, func(session *finance.SettlementSession) (bool, error) {
		if err := session.Reset(target); err != nil {
			return false, err
		}
		return true, nil
	})
}

// ConfirmSession validates a session, records its payments as sales of the
// current business date and discards the session. A business date that is
// already closed accepts no more sales.
func (s *SettlementService) ConfirmSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*ConfirmSettlementResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	confirmedAt := s.now()
	date := valueobject.DateOf(confirmedAt.In(s.location))
	closed, err := s.closingRepo.ExistsByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check closing: %w", err)
	}
	if closed {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Business date %s is already closed", date))
	}

	entries, err := session.Confirm()
	if err != nil {
		return nil, err
	}

	payments := finance.NewSalePayments(session, entries, date, confirmedAt)
	if err := s.paymentRepo.SaveBatch(ctx, payments); err != nil {
		return nil, fmt.Errorf("failed to record sale payments: %w", err)
	}

	if err := s.sessionRepo.Delete(ctx, tenantID, sessionID); err != nil {
		// Payments are recorded; a stale session is only a leftover
		s.logger.Warn("failed to discard confirmed settlement session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("settlement confirmed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("session_id", sessionID.String()),
		zap.String("sale_reference", session.SaleReference),
		zap.String("total_paid", session.TotalPaid().String()),
		zap.Int("payment_count", len(entries)),
	)

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, session.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish domain events", zap.Error(err))
		}
	}
	session.ClearDomainEvents()

	return &ConfirmSettlementResponse{
		SessionID:     session.ID,
		SaleReference: session.SaleReference,
		BusinessDate:  date.String(),
		TotalPaid:     session.TotalPaid(),
		Payments:      toPaymentEntryResponses(entries),
		ConfirmedAt:   confirmedAt,
	}, nil
}

// mutate loads a session, applies fn and saves it when fn reports a change.
// The save is rejected with CONCURRENCY_CONFLICT if another request saved first.
func (s *SettlementService) mutate(
	ctx context.Context,
	tenantID, sessionID uuid.UUID,
	fn func(*finance.SettlementSession) (bool, error),
) (*SettlementResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	changed, err := fn(session)
	if err != nil {
		return nil, err
	}
	if changed {
		session.IncrementVersion()
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return nil, err
		}
	}
	return toSettlementResponse(session), nil
}
