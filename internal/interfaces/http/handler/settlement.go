package handler

import (
	financeapp "github.com/erp/cashdesk/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// SettlementHandler drives the split-payment settlement of a single sale
type SettlementHandler struct {
	BaseHandler
	service *financeapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(service *financeapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// OpenSession godoc
// @ID           openSettlement
// @Summary      Open a settlement session
// @Description  Starts an empty settlement for a sale total
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body financeapp.OpenSettlementRequest true "Settlement target"
// @Success      201 {object} APIResponse[financeapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cash/settlements [post]
func (h *SettlementHandler) OpenSession(c *gin.Context) {
	var req financeapp.OpenSettlementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.OpenSession(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// GetSession godoc
// @ID           getSettlement
// @Summary      Get settlement state
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[financeapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cash/settlements/{id} [get]
func (h *SettlementHandler) GetSession(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.service.GetSession(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// AddPayment godoc
// @ID           addSettlementPayment
// @Summary      Add a payment
// @Description  Adds a payment entry. Amounts above the remaining balance are accepted and shown as overpaid.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Session ID"
// @Param        request body financeapp.AddPaymentRequest true "Payment"
// @Success      200 {object} APIResponse[financeapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /cash/settlements/{id}/payments [post]
func (h *SettlementHandler) AddPayment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req financeapp.AddPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.AddPayment(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// RemovePayment godoc
// @ID           removeSettlementPayment
// @Summary      Remove a payment
// @Description  Removes a payment entry. Unknown payment ids leave the session unchanged.
// @Tags         settlements
// @Produce      json
// @Param        id        path string true "Session ID"
// @Param        paymentId path string true "Payment ID"
// @Success      200 {object} APIResponse[financeapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /cash/settlements/{id}/payments/{paymentId} [delete]
func (h *SettlementHandler) RemovePayment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.parseUUIDParam(c, "paymentId")
	if !ok {
		return
	}
	session, err := h.service.RemovePayment(c.Request.Context(), getTenantID(c), id, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// FillRemainder godoc
// @ID           fillSettlementRemainder
// @Summary      Fill the remainder with cash
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[financeapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /cash/settlements/{id}/fill-remainder [post]
func (h *SettlementHandler) FillRemainder(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.service.FillRemainder(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// ResetSession godoc
// @ID           resetSettlement
// @Summary      Reset a settlement
// @Description  Discards all entries and starts over for a new total
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Session ID"
// @Param        request body financeapp.ResetSettlementRequest true "New target"
// @Success      200 {object} APIResponse[financeapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cash/settlements/{id}/reset [post]
func (h *SettlementHandler) ResetSession(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req financeapp.ResetSettlementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.ResetSession(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// ConfirmSession godoc
// @ID           confirmSettlement
// @Summary      Confirm a settlement
// @Description  Submits the payment entries as sale payments and closes the session
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[financeapp.ConfirmSettlementResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /cash/settlements/{id}/confirm [post]
func (h *SettlementHandler) ConfirmSession(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	confirmed, err := h.service.ConfirmSession(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, confirmed)
}
