package migration

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSource_VersionsArePaired(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	version, err := src.First()
	require.NoError(t, err)

	var versions []uint
	for {
		versions = append(versions, version)

		up, upID, err := src.ReadUp(version)
		require.NoError(t, err, "version %d has no up migration", version)
		body, err := io.ReadAll(up)
		require.NoError(t, err)
		_ = up.Close()
		assert.NotEmpty(t, strings.TrimSpace(string(body)), upID)

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		_ = down.Close()

		version, err = src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, []uint{1, 2, 3}, versions)
}

func TestSource_SchemaMatchesModels(t *testing.T) {
	want := map[string][]string{
		"sql/000001_create_cash_closings.up.sql": {"idx_closing_tenant_date", "business_date", "difference_status"},
		"sql/000002_create_sale_payments.up.sql": {"idx_sale_payment_tenant_date", "session_id", "paid_at"},
		"sql/000003_create_cash_expenses.up.sql": {"idx_cash_expense_tenant_date", "spent_at"},
	}

	for file, fragments := range want {
		body, err := migrationsFS.ReadFile(file)
		require.NoError(t, err)
		for _, f := range fragments {
			assert.Contains(t, string(body), f, file)
		}
	}
}

func TestZapMigrateLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &zapMigrateLogger{logger: zap.New(core)}

	assert.True(t, l.Verbose())
	l.Printf("applied %d", 3)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "applied 3", logs.All()[0].Message)

	quiet := &zapMigrateLogger{logger: zap.NewNop()}
	assert.False(t, quiet.Verbose())
}
