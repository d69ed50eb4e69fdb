package finance

import (
	"fmt"
	"time"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemainderNote marks the entry appended by FillRemainderAsCash
const RemainderNote = "REMAINDER"

// Validation error codes raised by the settlement session
const (
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidTarget        = "INVALID_TARGET"
	ErrCodeNoPayments           = "NO_PAYMENTS"
	ErrCodeSettlementIncomplete = "SETTLEMENT_INCOMPLETE"
	ErrCodeInvalidNotes         = "INVALID_NOTES"
)

// SettlementStatus is derived from the remaining balance of a session
type SettlementStatus string

const (
	SettlementStatusEmpty    SettlementStatus = "EMPTY"    // No payments entered
	SettlementStatusPartial  SettlementStatus = "PARTIAL"  // Some payments, balance still owed
	SettlementStatusComplete SettlementStatus = "COMPLETE" // Balance within tolerance of zero
	SettlementStatusOverpaid SettlementStatus = "OVERPAID" // Paid more than the target
)

// PaymentEntry is one operator-entered payment toward a sale total
type PaymentEntry struct {
	ID      uuid.UUID       `json:"id"`
	Method  PaymentMethod   `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note,omitempty"`
	AddedAt time.Time       `json:"added_at"`
}

// SettlementState is the derived view of a session. It is never stored.
type SettlementState struct {
	TotalTarget  decimal.Decimal  `json:"total_target"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	Remaining    decimal.Decimal  `json:"remaining"`
	IsComplete   bool             `json:"is_complete"`
	Status       SettlementStatus `json:"status"`
	PaymentCount int              `json:"payment_count"`
}

// SettlementSession collects payments against a fixed sale total.
// Payments are kept in entry order; every derived figure is recomputed
// from that list on demand.
type SettlementSession struct {
	shared.TenantAggregateRoot
	SaleReference string               `json:"sale_reference"`
	Currency      valueobject.Currency `json:"currency"`
	TotalTarget   decimal.Decimal      `json:"total_target"`
	Payments      []PaymentEntry       `json:"payments"`
	OpenedAt      time.Time            `json:"opened_at"`
}

// NewSettlementSession opens an empty session for a sale total
func NewSettlementSession(tenantID uuid.UUID, saleReference string, target valueobject.Money) (*SettlementSession, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if len(saleReference) > 64 {
		return nil, shared.NewDomainError("INVALID_SALE_REFERENCE", "Sale reference cannot exceed 64 characters")
	}
	if err := validateTarget(target); err != nil {
		return nil, err
	}

	return &SettlementSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleReference:       saleReference,
		Currency:            target.Currency(),
		TotalTarget:         target.Amount(),
		Payments:            make([]PaymentEntry, 0),
		OpenedAt:            time.Now(),
	}, nil
}

func validateTarget(target valueobject.Money) error {
	if !target.IsPositive() {
		return shared.NewDomainError(ErrCodeInvalidTarget, "Sale total must be positive")
	}
	if !target.Round().Equals(target) {
		return shared.NewDomainError(ErrCodeInvalidTarget,
			fmt.Sprintf("Sale total has more decimals than %s allows", target.Currency()))
	}
	return nil
}

// AddPayment appends a payment. Invalid input leaves the session untouched.
func (s *SettlementSession) AddPayment(method PaymentMethod, amount decimal.Decimal, note string) (*PaymentEntry, error) {
	if !method.IsValid() {
		return nil, shared.NewDomainError(ErrCodeInvalidPaymentMethod,
			fmt.Sprintf("Payment method %q is not accepted", method))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(ErrCodeInvalidAmount, "Payment amount must be greater than zero")
	}
	if !amount.Round(s.Currency.MinorUnits()).Equal(amount) {
		return nil, shared.NewDomainError(ErrCodeInvalidAmount,
			fmt.Sprintf("Payment amount has more decimals than %s allows", s.Currency))
	}
	if len(note) > 255 {
		return nil, shared.NewDomainError(ErrCodeInvalidNotes, "Payment note cannot exceed 255 characters")
	}

	entry := PaymentEntry{
		ID:      uuid.New(),
		Method:  method,
		Amount:  amount,
		Note:    note,
		AddedAt: time.Now(),
	}
	s.Payments = append(s.Payments, entry)
	return &entry, nil
}

// RemovePayment drops the entry with the given ID. It reports whether an
// entry was removed; an unknown ID is not an error.
func (s *SettlementSession) RemovePayment(id uuid.UUID) bool {
	for i, p := range s.Payments {
		if p.ID == id {
			s.Payments = append(s.Payments[:i:i], s.Payments[i+1:]...)
			return true
		}
	}
	return false
}

// FillRemainderAsCash settles whatever is still owed with one cash entry.
// Returns nil when nothing is owed.
func (s *SettlementSession) FillRemainderAsCash() *PaymentEntry {
	remaining := s.Remaining()
	if !remaining.IsPositive() {
		return nil
	}
	entry, err := s.AddPayment(PaymentMethodCash, remaining, RemainderNote)
	if err != nil {
		// remaining is built from validated amounts, so this cannot fail
		return nil
	}
	return entry
}

// Confirm validates that the session may be submitted and returns the
// entries in the order they were added.
func (s *SettlementSession) Confirm() ([]PaymentEntry, error) {
	if len(s.Payments) == 0 {
		return nil, shared.NewDomainError(ErrCodeNoPayments, "No payment methods have been added")
	}
	if !s.IsComplete() {
		return nil, shared.NewDomainError(ErrCodeSettlementIncomplete,
			fmt.Sprintf("Payments total %s but sale total is %s",
				s.TotalPaid().StringFixed(s.Currency.MinorUnits()),
				s.TotalTarget.StringFixed(s.Currency.MinorUnits())))
	}

	entries := make([]PaymentEntry, len(s.Payments))
	copy(entries, s.Payments)
	s.AddDomainEvent(NewSettlementConfirmedEvent(s, entries))
	return entries, nil
}

// Reset empties the session for a new sale total
func (s *SettlementSession) Reset(target valueobject.Money) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	s.Currency = target.Currency()
	s.TotalTarget = target.Amount()
	s.Payments = make([]PaymentEntry, 0)
	s.OpenedAt = time.Now()
	return nil
}

// TotalPaid returns the sum of all current entries
func (s *SettlementSession) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Remaining returns target minus paid; negative when overpaid
func (s *SettlementSession) Remaining() decimal.Decimal {
	return s.TotalTarget.Sub(s.TotalPaid())
}

// IsComplete reports whether the remaining balance is within tolerance of zero
func (s *SettlementSession) IsComplete() bool {
	return s.Remaining().Abs().LessThanOrEqual(s.Currency.Tolerance())
}

// Status derives the session status from the remaining balance
func (s *SettlementSession) Status() SettlementStatus {
	switch {
	case len(s.Payments) == 0:
		return SettlementStatusEmpty
	case s.IsComplete():
		return SettlementStatusComplete
	case s.Remaining().IsNegative():
		return SettlementStatusOverpaid
	default:
		return SettlementStatusPartial
	}
}

// State returns the derived totals for presentation
func (s *SettlementSession) State() SettlementState {
	paid := s.TotalPaid()
	remaining := s.TotalTarget.Sub(paid)
	return SettlementState{
		TotalTarget:  s.TotalTarget,
		TotalPaid:    paid,
		Remaining:    remaining,
		IsComplete:   remaining.Abs().LessThanOrEqual(s.Currency.Tolerance()),
		Status:       s.Status(),
		PaymentCount: len(s.Payments),
	}
}

// PaymentsByMethod totals the current entries per method
func (s *SettlementSession) PaymentsByMethod() map[PaymentMethod]decimal.Decimal {
	totals := make(map[PaymentMethod]decimal.Decimal)
	for _, p := range s.Payments {
		totals[p.Method] = totals[p.Method].Add(p.Amount)
	}
	return totals
}
