package handler

import (
	appledger "github.com/edupay/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// FeeHandler handles admin-facing fee ledger endpoints
type FeeHandler struct {
	BaseHandler
	feeService *appledger.FeeService
}

// NewFeeHandler creates a new FeeHandler
func NewFeeHandler(feeService *appledger.FeeService) *FeeHandler {
	return &FeeHandler{feeService: feeService}
}

// Create charges a fee against a student
func (h *FeeHandler) Create(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appledger.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid fee payload: "+err.Error())
		return
	}

	resp, err := h.feeService.CreateFee(c.Request.Context(), req, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a single fee
func (h *FeeHandler) Get(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	feeID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid fee ID")
		return
	}

	resp, err := h.feeService.GetFee(c.Request.Context(), feeID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns fees for the authenticated admin with filtering
func (h *FeeHandler) List(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appledger.FeeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid filter: "+err.Error())
		return
	}

	fees, total, err := h.feeService.ListFees(c.Request.Context(), ownerAdminID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, fees, total, page, pageSize)
}

// ListForStudent returns a student's fees
func (h *FeeHandler) ListForStudent(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var filter appledger.FeeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid filter: "+err.Error())
		return
	}

	fees, err := h.feeService.GetFeesForStudent(c.Request.Context(), studentID, ownerAdminID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fees)
}

// Outstanding returns a student's unsettled fees and their total
func (h *FeeHandler) Outstanding(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	resp, err := h.feeService.GetOutstandingForStudent(c.Request.Context(), studentID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// PaymentsForFee returns the payments recorded against one fee
func (h *FeeHandler) PaymentsForFee(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	feeID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid fee ID")
		return
	}

	payments, err := h.feeService.GetPaymentsForFee(c.Request.Context(), feeID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// PaymentHistory returns a student's payment history, newest first
func (h *FeeHandler) PaymentHistory(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	payments, err := h.feeService.GetPaymentHistory(c.Request.Context(), studentID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}
