package handler

import (
	"fmt"
	"net/http"

	financeapp "github.com/erp/cashdesk/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// xlsxContentType is the media type of closing exports
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CashClosingHandler handles daily summaries, closings and petty-cash expenses
type CashClosingHandler struct {
	BaseHandler
	service *financeapp.CashClosingService
}

// NewCashClosingHandler creates a new CashClosingHandler
func NewCashClosingHandler(service *financeapp.CashClosingService) *CashClosingHandler {
	return &CashClosingHandler{service: service}
}

// GetDailySummary godoc
// @ID           getCashDailySummary
// @Summary      Get daily summary
// @Description  Aggregates sales by payment method and cash expenses for a business date
// @Tags         cash
// @Produce      json
// @Param        date query string false "Business date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[financeapp.DailySummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/summary [get]
func (h *CashClosingHandler) GetDailySummary(c *gin.Context) {
	summary, err := h.service.GetDailySummary(c.Request.Context(), getTenantID(c), c.Query("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// CreateClosing godoc
// @ID           createCashClosing
// @Summary      Close the cash drawer
// @Description  Records the counted cash for a business date and computes the difference against expected cash
// @Tags         cash
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateClosingRequest true "Closing request"
// @Success      201 {object} APIResponse[financeapp.CashClosingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/closings [post]
func (h *CashClosingHandler) CreateClosing(c *gin.Context) {
	var req financeapp.CreateClosingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = getUserID(c)

	closing, err := h.service.CreateClosing(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, closing)
}

// ListClosings godoc
// @ID           listCashClosings
// @Summary      List closings
// @Description  Lists closings in a date range, newest first. Defaults to the last 31 days.
// @Tags         cash
// @Produce      json
// @Param        from      query string false "Start date (YYYY-MM-DD)"
// @Param        to        query string false "End date (YYYY-MM-DD)"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(31) maximum(100)
// @Success      200 {object} APIResponse[[]financeapp.CashClosingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/closings [get]
func (h *CashClosingHandler) ListClosings(c *gin.Context) {
	var filter financeapp.ClosingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	closings, total, err := h.service.ListClosings(c.Request.Context(), getTenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 31
	}
	if pageSize > 100 {
		pageSize = 100
	}
	h.SuccessWithMeta(c, closings, total, page, pageSize)
}

// GetLatestClosing godoc
// @ID           getCashLatestClosing
// @Summary      Get latest closing
// @Description  Returns the closing with the most recent business date
// @Tags         cash
// @Produce      json
// @Success      200 {object} APIResponse[financeapp.CashClosingResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/closings/latest [get]
func (h *CashClosingHandler) GetLatestClosing(c *gin.Context) {
	closing, err := h.service.GetLatestClosing(c.Request.Context(), getTenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, closing)
}

// GetClosing godoc
// @ID           getCashClosing
// @Summary      Get closing by ID
// @Tags         cash
// @Produce      json
// @Param        id path string true "Closing ID"
// @Success      200 {object} APIResponse[financeapp.CashClosingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/closings/{id} [get]
func (h *CashClosingHandler) GetClosing(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	closing, err := h.service.GetClosing(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, closing)
}

// ExportClosings godoc
// @ID           exportCashClosings
// @Summary      Export closings
// @Description  Downloads the closings of a date range as an Excel workbook
// @Tags         cash
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to   query string false "End date (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /cash/closings/export [get]
func (h *CashClosingHandler) ExportClosings(c *gin.Context) {
	data, err := h.service.ExportClosings(c.Request.Context(), getTenantID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("cash_closings_%s.xlsx", h.service.Today().String())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RecordExpense godoc
// @ID           recordCashExpense
// @Summary      Record a cash expense
// @Description  Records petty cash taken from the drawer. Business date defaults to today.
// @Tags         cash
// @Accept       json
// @Produce      json
// @Param        request body financeapp.RecordExpenseRequest true "Expense request"
// @Success      201 {object} APIResponse[financeapp.CashExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/expenses [post]
func (h *CashClosingHandler) RecordExpense(c *gin.Context) {
	var req financeapp.RecordExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = getUserID(c)

	expense, err := h.service.RecordExpense(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// ListExpenses godoc
// @ID           listCashExpenses
// @Summary      List cash expenses
// @Tags         cash
// @Produce      json
// @Param        date query string false "Business date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[[]financeapp.CashExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/expenses [get]
func (h *CashClosingHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.service.ListExpenses(c.Request.Context(), getTenantID(c), c.Query("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expenses)
}
