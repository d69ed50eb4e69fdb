package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	financeapp "github.com/erp/cashdesk/internal/application/finance"
	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/erp/cashdesk/internal/infrastructure/cache"
	"github.com/erp/cashdesk/internal/infrastructure/export"
	"github.com/erp/cashdesk/internal/infrastructure/persistence"
	"github.com/erp/cashdesk/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type testEnv struct {
	engine   *gin.Engine
	db       *persistence.Database
	closings *financeapp.CashClosingService
	tenantID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := persistence.Open(sqlite.Open(t.TempDir()+"/handler.db"), gormlogger.Discard)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	closingRepo := persistence.NewGormCashClosingRepository(db.DB)
	paymentRepo := persistence.NewGormSalePaymentRepository(db.DB)
	expenseRepo := persistence.NewGormCashExpenseRepository(db.DB)
	store := cache.NewInMemorySettlementStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	alerts := finance.NewClosingAlertService(finance.WithLocation(time.UTC))
	closings := financeapp.NewCashClosingService(closingRepo, paymentRepo, expenseRepo, alerts, valueobject.CNY)
	closings.SetClock(func() time.Time { return fixedNow })
	closings.SetExporter(export.NewClosingExcelExporter())

	settlements := financeapp.NewSettlementService(store, paymentRepo, closingRepo, valueobject.CNY, time.UTC)
	settlements.SetClock(func() time.Time { return fixedNow })

	monitor := financeapp.NewClosingAlertMonitor(alerts, closings, nil, closingRepo, paymentRepo)
	monitor.SetClock(func() time.Time { return fixedNow })

	closingHandler := NewCashClosingHandler(closings)
	settlementHandler := NewSettlementHandler(settlements)
	alertHandler := NewAlertHandler(monitor)
	systemHandler := NewSystemHandler("cashdesk", "test", db)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Tenant(middleware.DefaultTenantConfig()))
	engine.GET("/health", systemHandler.Health)

	cash := engine.Group("/api/v1/cash")
	cash.GET("/summary", closingHandler.GetDailySummary)
	cash.POST("/closings", closingHandler.CreateClosing)
	cash.GET("/closings", closingHandler.ListClosings)
	cash.GET("/closings/latest", closingHandler.GetLatestClosing)
	cash.GET("/closings/export", closingHandler.ExportClosings)
	cash.GET("/closings/:id", closingHandler.GetClosing)
	cash.POST("/expenses", closingHandler.RecordExpense)
	cash.GET("/expenses", closingHandler.ListExpenses)
	cash.GET("/alerts", alertHandler.GetAlerts)
	cash.POST("/settlements", settlementHandler.OpenSession)
	cash.GET("/settlements/:id", settlementHandler.GetSession)
	cash.POST("/settlements/:id/payments", settlementHandler.AddPayment)
	cash.DELETE("/settlements/:id/payments/:paymentId", settlementHandler.RemovePayment)
	cash.POST("/settlements/:id/fill-remainder", settlementHandler.FillRemainder)
	cash.POST("/settlements/:id/reset", settlementHandler.ResetSession)
	cash.POST("/settlements/:id/confirm", settlementHandler.ConfirmSession)

	return &testEnv{engine: engine, db: db, closings: closings, tenantID: uuid.New()}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	return e.doWithHeaders(t, nil, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, userID uuid.UUID, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	return e.doWithHeaders(t, map[string]string{UserHeaderKey: userID.String()}, method, path, body)
}

func (e *testEnv) doWithHeaders(t *testing.T, headers map[string]string, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	reader := bytes.NewReader(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, e.tenantID.String())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}
