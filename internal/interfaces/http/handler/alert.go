package handler

import (
	"strconv"

	financeapp "github.com/erp/cashdesk/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// AlertHandler exposes the closing alerts of the current tenant
type AlertHandler struct {
	BaseHandler
	monitor *financeapp.ClosingAlertMonitor
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(monitor *financeapp.ClosingAlertMonitor) *AlertHandler {
	return &AlertHandler{monitor: monitor}
}

// GetAlerts godoc
// @ID           getCashAlerts
// @Summary      Get closing alerts
// @Description  Returns the last evaluated alert set. refresh=true evaluates it again first.
// @Tags         cash
// @Produce      json
// @Param        refresh query bool false "Re-evaluate before returning"
// @Success      200 {object} APIResponse[financeapp.AlertSetResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/alerts [get]
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	refresh := false
	if raw := c.Query("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "refresh must be a boolean")
			return
		}
		refresh = v
	}

	set, err := h.monitor.Current(c.Request.Context(), getTenantID(c), refresh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}
