package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/erp/cashdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashClosingRepository implements CashClosingRepository using GORM
type GormCashClosingRepository struct {
	db *gorm.DB
}

// NewGormCashClosingRepository creates a new GormCashClosingRepository
func NewGormCashClosingRepository(db *gorm.DB) *GormCashClosingRepository {
	return &GormCashClosingRepository{db: db}
}

// FindByID finds a closing by ID within a tenant
func (r *GormCashClosingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CashClosing, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByDate finds the closing of a business date
func (r *GormCashClosingRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (*finance.CashClosing, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND business_date = ?", tenantID, date.String()))
}

// FindLatest returns the closing with the latest business date
func (r *GormCashClosingRepository) FindLatest(ctx context.Context, tenantID uuid.UUID) (*finance.CashClosing, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("business_date DESC"))
}

func (r *GormCashClosingRepository) first(query *gorm.DB) (*finance.CashClosing, error) {
	var model models.CashClosingModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByDateRange lists closings in [from, to] ordered by business date
func (r *GormCashClosingRepository) FindByDateRange(
	ctx context.Context,
	tenantID uuid.UUID,
	from, to valueobject.BusinessDate,
	filter shared.Filter,
) ([]finance.CashClosing, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CashClosingModel{}).
		Where("tenant_id = ? AND business_date BETWEEN ? AND ?", tenantID, from.String(), to.String())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("business_date " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CashClosingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	closings := make([]finance.CashClosing, 0, len(rows))
	for i := range rows {
		c, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		closings = append(closings, *c)
	}
	return closings, total, nil
}

// ExistsByDate checks if a closing exists for the business date
func (r *GormCashClosingRepository) ExistsByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CashClosingModel{}).
		Where("tenant_id = ? AND business_date = ?", tenantID, date.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates a closing. Closings are immutable once written, and the
// (tenant, date) unique index turns a racing second closing into
// shared.ErrAlreadyExists.
func (r *GormCashClosingRepository) Save(ctx context.Context, closing *finance.CashClosing) error {
	model := models.CashClosingModelFromDomain(closing)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to save cash closing: %w", err)
	}
	return nil
}

// ListTenantIDs returns every tenant that has recorded a closing
func (r *GormCashClosingRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.CashClosingModel{}).
		Distinct().Pluck("tenant_id", &ids).Error
	return ids, err
}

var _ finance.CashClosingRepository = (*GormCashClosingRepository)(nil)
