package persistence

import (
	"context"
	"fmt"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/erp/cashdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashExpenseRepository implements CashExpenseRepository using GORM
type GormCashExpenseRepository struct {
	db *gorm.DB
}

// NewGormCashExpenseRepository creates a new GormCashExpenseRepository
func NewGormCashExpenseRepository(db *gorm.DB) *GormCashExpenseRepository {
	return &GormCashExpenseRepository{db: db}
}

// Save creates an expense
func (r *GormCashExpenseRepository) Save(ctx context.Context, expense *finance.CashExpense) error {
	if err := r.db.WithContext(ctx).Create(models.CashExpenseModelFromDomain(expense)).Error; err != nil {
		return fmt.Errorf("failed to save cash expense: %w", err)
	}
	return nil
}

// FindByDate lists the expenses of a business date
func (r *GormCashExpenseRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) ([]finance.CashExpense, error) {
	var rows []models.CashExpenseModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND business_date = ?", tenantID, date.String()).
		Order("spent_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	expenses := make([]finance.CashExpense, 0, len(rows))
	for i := range rows {
		e, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, nil
}

// SumByDate returns the total and count of a business date's expenses
func (r *GormCashExpenseRepository) SumByDate(ctx context.Context, tenantID uuid.UUID, date valueobject.BusinessDate) (decimal.Decimal, int, error) {
	expenses, err := r.FindByDate(ctx, tenantID, date)
	if err != nil {
		return decimal.Zero, 0, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total, len(expenses), nil
}

var _ finance.CashExpenseRepository = (*GormCashExpenseRepository)(nil)
