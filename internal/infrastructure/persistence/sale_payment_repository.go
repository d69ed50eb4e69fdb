package persistence

import (
	"context"
	"fmt"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/erp/cashdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalePaymentRepository implements SalePaymentRepository using GORM
type GormSalePaymentRepository struct {
	db *gorm.DB
}

// NewGormSalePaymentRepository creates a new GormSalePaymentRepository
func NewGormSalePaymentRepository(db *gorm.DB) *GormSalePaymentRepository {
	return &GormSalePaymentRepository{db: db}
}

// SaveBatch stores the payments of one settlement in a single transaction.
// Payments already stored under the same id are left untouched.
func (r *GormSalePaymentRepository) SaveBatch(ctx context.Context, payments []finance.SalePayment) error {
	if len(payments) == 0 {
		return nil
	}
	rows := make([]*models.SalePaymentModel, len(payments))
	for i := range payments {
		rows[i] = models.SalePaymentModelFromDomain(&payments[i])
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save sale payments: %w", err)
	}
	return nil
}

// FindByDate lists the payments of a business date in payment order
func (r *GormSalePaymentRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) ([]finance.SalePayment, error) {
	var rows []models.SalePaymentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND business_date = ?", tenantID, date.String()).
		Order("paid_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	payments := make([]finance.SalePayment, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// SummarizeDay aggregates the payments of a business date per method.
// Amounts are summed as decimals after loading; SQL SUM over SQLite's
// numeric affinity would go through float64.
func (r *GormSalePaymentRepository) SummarizeDay(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*finance.PaymentDaySummary, error) {
	payments, err := r.FindByDate(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	return finance.SummarizePayments(payments), nil
}

// ListTenantIDs returns every tenant that has recorded a sale payment
func (r *GormSalePaymentRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.SalePaymentModel{}).
		Distinct().Pluck("tenant_id", &ids).Error
	return ids, err
}

var _ finance.SalePaymentRepository = (*GormSalePaymentRepository)(nil)
