package persistence

import (
	"context"
	"testing"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCashExpenseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCashExpenseRepository(setupTestDB(t))
	tenantID := uuid.New()
	today := valueobject.MustParseBusinessDate("2026-10-19")

	for _, e := range []struct{ date, amount, desc string }{
		{"2026-10-19", "12.50", "ice"},
		{"2026-10-19", "30", "cleaning supplies"},
		{"2026-10-18", "7", "stamps"},
	} {
		expense, err := finance.NewCashExpense(
			tenantID,
			valueobject.MustParseBusinessDate(e.date),
			valueobject.MustMoney(dec(e.amount), valueobject.CNY),
			e.desc,
			today,
		)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, expense))
	}

	expenses, err := repo.FindByDate(ctx, tenantID, today)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, tenantID, expenses[0].TenantID)
	assert.Equal(t, today, expenses[0].BusinessDate)

	total, count, err := repo.SumByDate(ctx, tenantID, today)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("42.5")))
	assert.Equal(t, 2, count)

	total, count, err = repo.SumByDate(ctx, uuid.New(), today)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Zero(t, count)
}
