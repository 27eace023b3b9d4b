package ledger

import (
	"time"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Fee DTOs
// =============================================================================

// CreateFeeRequest represents a request to charge a fee to a student
type CreateFeeRequest struct {
	StudentID   uuid.UUID       `json:"student_id" binding:"required"`
	FeeType     string          `json:"fee_type" binding:"required,oneof=TUITION EXAMINATION TRANSPORT LIBRARY MISCELLANEOUS"`
	Description string          `json:"description" binding:"max=255"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     *time.Time      `json:"due_date"`
}

// FeeResponse represents a fee in API responses
type FeeResponse struct {
	ID                uuid.UUID       `json:"id"`
	StudentID         uuid.UUID       `json:"student_id"`
	FeeType           string          `json:"fee_type"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            string          `json:"status"`
	DueDate           *time.Time      `json:"due_date"`
	PaidAt            *time.Time      `json:"paid_at"`
	Overdue           bool            `json:"overdue"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToFeeResponse maps a fee aggregate to its response representation
func ToFeeResponse(f *ledger.Fee) FeeResponse {
	return FeeResponse{
		ID:                f.ID,
		StudentID:         f.StudentID,
		FeeType:           string(f.FeeType),
		Description:       f.Description,
		Amount:            f.Amount,
		AmountPaid:        f.AmountPaid,
		OutstandingAmount: f.OutstandingAmount,
		Status:            string(f.Status),
		DueDate:           f.DueDate,
		PaidAt:            f.PaidAt,
		Overdue:           f.IsOverdue(),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
		Version:           f.Version,
	}
}

// ToFeeResponses maps a slice of fees
func ToFeeResponses(fees []ledger.Fee) []FeeResponse {
	out := make([]FeeResponse, len(fees))
	for i := range fees {
		out[i] = ToFeeResponse(&fees[i])
	}
	return out
}

// OutstandingResponse lists a student's unsettled fees with their total
type OutstandingResponse struct {
	StudentID        uuid.UUID       `json:"student_id"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Fees             []FeeResponse   `json:"fees"`
}

// FeeListFilter represents filter options for fee listings
type FeeListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PARTIALLY_PAID PAID"`
	FeeType  string `form:"fee_type" binding:"omitempty,oneof=TUITION EXAMINATION TRANSPORT LIBRARY MISCELLANEOUS"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// =============================================================================
// Payment DTOs
// =============================================================================

// RecordCashPaymentRequest represents a cash deposit taken at the office
type RecordCashPaymentRequest struct {
	StudentID uuid.UUID       `json:"student_id" binding:"required"`
	FeeID     uuid.UUID       `json:"fee_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// CreatePaymentOrderRequest represents a request to open an online payment order
type CreatePaymentOrderRequest struct {
	StudentID uuid.UUID       `json:"student_id" binding:"required"`
	FeeID     uuid.UUID       `json:"fee_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID       `json:"id"`
	TransactionID    string          `json:"transaction_id"`
	FeeID            uuid.UUID       `json:"fee_id"`
	StudentID        uuid.UUID       `json:"student_id"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	Status           string          `json:"status"`
	GatewayOrderID   string          `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	SettledAt        *time.Time      `json:"settled_at"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToPaymentResponse maps a payment aggregate to its response representation
func ToPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		TransactionID:    p.TransactionID,
		FeeID:            p.FeeID,
		StudentID:        p.StudentID,
		Amount:           p.Amount,
		Method:           string(p.Method),
		Status:           string(p.Status),
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		FailureReason:    p.FailureReason,
		SettledAt:        p.SettledAt,
		CreatedAt:        p.CreatedAt,
	}
}

// ToPaymentResponses maps a slice of payments
func ToPaymentResponses(payments []ledger.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// CashPaymentResult carries both sides of a recorded cash deposit
type CashPaymentResult struct {
	Fee     FeeResponse     `json:"fee"`
	Payment PaymentResponse `json:"payment"`
}

// PaymentOrderResponse is returned when an online payment order is opened
type PaymentOrderResponse struct {
	PaymentID      uuid.UUID       `json:"payment_id"`
	TransactionID  string          `json:"transaction_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
}

// =============================================================================
// Callback DTOs
// =============================================================================

// GatewayCallbackRequest is the payload posted by the payment gateway.
// StudentID and FeeID mirror the notes attached at order creation and
// are only consulted when no provisional payment exists for the order.
type GatewayCallbackRequest struct {
	GatewayOrderID   string          `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string          `json:"gateway_payment_id" binding:"required"`
	Status           string          `json:"status" binding:"required,oneof=SUCCESS FAILED"`
	Amount           decimal.Decimal `json:"amount"`
	ErrorDescription string          `json:"error_description"`
	StudentID        *uuid.UUID      `json:"student_id"`
	FeeID            *uuid.UUID      `json:"fee_id"`
	Signature        string          `json:"signature" binding:"required"`
}

// CallbackResult reports what a callback delivery did
type CallbackResult struct {
	Processed        bool   `json:"processed"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
	PaymentStatus    string `json:"payment_status,omitempty"`
}
