package handler

import (
	appledger "github.com/edupay/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// CallbackHandler receives payment gateway callbacks. The route is
// unauthenticated; the HMAC signature inside the payload is the only
// credential, and the service rejects anything that fails verification.
type CallbackHandler struct {
	BaseHandler
	callbackService *appledger.GatewayCallbackService
}

// NewCallbackHandler creates a new CallbackHandler
func NewCallbackHandler(callbackService *appledger.GatewayCallbackService) *CallbackHandler {
	return &CallbackHandler{callbackService: callbackService}
}

// Handle processes a gateway callback delivery. Duplicate deliveries
// and failure notifications both get a 200 so the gateway stops
// retrying; only verification and processing errors surface as errors.
func (h *CallbackHandler) Handle(c *gin.Context) {
	var req appledger.GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid callback payload: "+err.Error())
		return
	}

	result, err := h.callbackService.HandleGatewayCallback(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
