package handler

import (
	appledger "github.com/edupay/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment recording and lookup endpoints
type PaymentHandler struct {
	BaseHandler
	cashService  *appledger.CashPaymentService
	orderService *appledger.PaymentOrderService
	feeService   *appledger.FeeService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	cashService *appledger.CashPaymentService,
	orderService *appledger.PaymentOrderService,
	feeService *appledger.FeeService,
) *PaymentHandler {
	return &PaymentHandler{
		cashService:  cashService,
		orderService: orderService,
		feeService:   feeService,
	}
}

// RecordCash records a cash deposit taken at the school office. The fee
// balance and the payment row land atomically.
func (h *PaymentHandler) RecordCash(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appledger.RecordCashPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid payment payload: "+err.Error())
		return
	}

	result, err := h.cashService.RecordCashPayment(c.Request.Context(), req, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// CreateOrder opens an online payment order with the gateway. The fee
// balance stays untouched until the gateway confirms settlement.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appledger.CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid order payload: "+err.Error())
		return
	}

	resp, err := h.orderService.CreatePaymentOrder(c.Request.Context(), req, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByTransactionID resolves a receipt number to its payment record
func (h *PaymentHandler) GetByTransactionID(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	transactionID := c.Param("transactionID")
	if transactionID == "" {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.feeService.GetPaymentByTransactionID(c.Request.Context(), transactionID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
