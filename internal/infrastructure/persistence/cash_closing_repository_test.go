package persistence

import (
	"context"
	"testing"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(t.TempDir()+"/test.db"), gormlogger.Discard)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newClosing(t *testing.T, tenantID uuid.UUID, date, counted string) *finance.CashClosing {
	t.Helper()
	summary := finance.NewDailySummary(
		valueobject.MustParseBusinessDate(date),
		valueobject.CNY,
		&finance.PaymentDaySummary{
			ByMethod:         map[finance.PaymentMethod]decimal.Decimal{finance.PaymentMethodCash: dec("100")},
			TransactionCount: 2,
		},
		decimal.Zero,
		0,
	)
	closing, err := finance.NewCashClosing(tenantID, summary, finance.ClosingInput{
		OpeningCash: valueobject.Zero(valueobject.CNY),
		ClosingCash: valueobject.MustMoney(dec(counted), valueobject.CNY),
		ExtraIncome: valueobject.Zero(valueobject.CNY),
		Notes:       "counted twice",
	}, valueobject.MustParseBusinessDate("2026-12-31"))
	require.NoError(t, err)
	return closing
}

func TestGormCashClosingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCashClosingRepository(setupTestDB(t))
	tenantID := uuid.New()

	for _, date := range []string{"2026-10-15", "2026-10-17", "2026-10-16"} {
		require.NoError(t, repo.Save(ctx, newClosing(t, tenantID, date, "90.5")))
	}
	other := uuid.New()
	require.NoError(t, repo.Save(ctx, newClosing(t, other, "2026-10-18", "100")))

	t.Run("round trips every field", func(t *testing.T) {
		original := newClosing(t, uuid.New(), "2026-09-01", "99.99")
		require.NoError(t, repo.Save(ctx, original))

		found, err := repo.FindByID(ctx, original.TenantID, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.BusinessDate, found.BusinessDate)
		assert.Equal(t, valueobject.CNY, found.Currency)
		assert.True(t, found.SystemCash.Equal(dec("100")))
		assert.True(t, found.Difference.Equal(dec("-0.01")))
		assert.Equal(t, finance.DifferenceStatusShortage, found.DifferenceStatus)
		assert.Equal(t, 2, found.TransactionCount)
		assert.Equal(t, "counted twice", found.Notes)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("find by id is tenant scoped", func(t *testing.T) {
		closing, err := repo.FindByDate(ctx, other, valueobject.MustParseBusinessDate("2026-10-18"))
		require.NoError(t, err)
		_, err = repo.FindByID(ctx, tenantID, closing.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("latest is by business date", func(t *testing.T) {
		latest, err := repo.FindLatest(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-17", latest.BusinessDate.String())

		_, err = repo.FindLatest(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("one closing per date", func(t *testing.T) {
		err := repo.Save(ctx, newClosing(t, tenantID, "2026-10-15", "1"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		exists, err := repo.ExistsByDate(ctx, tenantID, valueobject.MustParseBusinessDate("2026-10-15"))
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repo.ExistsByDate(ctx, tenantID, valueobject.MustParseBusinessDate("2026-10-14"))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("date range with paging", func(t *testing.T) {
		from := valueobject.MustParseBusinessDate("2026-10-01")
		to := valueobject.MustParseBusinessDate("2026-10-16")

		closings, total, err := repo.FindByDateRange(ctx, tenantID, from, to, shared.Filter{Page: 1, PageSize: 1, OrderDir: "desc"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, closings, 1)
		assert.Equal(t, "2026-10-16", closings[0].BusinessDate.String())

		closings, _, err = repo.FindByDateRange(ctx, tenantID, from, to, shared.Filter{OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, closings, 2)
		assert.Equal(t, "2026-10-15", closings[0].BusinessDate.String())
	})

	t.Run("lists tenants", func(t *testing.T) {
		ids, err := repo.ListTenantIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, tenantID)
		assert.Contains(t, ids, other)
	})
}
