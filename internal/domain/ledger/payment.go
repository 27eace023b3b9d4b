package ledger

import (
	"fmt"
	"time"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodOnline
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // Order created, awaiting gateway outcome
	PaymentStatusSuccess PaymentStatus = "SUCCESS" // Settled; the fee ledger reflects it
	PaymentStatusFailed  PaymentStatus = "FAILED"  // Gateway reported failure; never touched the ledger
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment is in a final state
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment records money movement against a fee. A SUCCESS payment has
// already been credited to its fee; a PENDING one is an open gateway
// order; a FAILED one is kept for audit and never credits the ledger.
type Payment struct {
	shared.OwnedAggregateRoot
	TransactionID    string          `json:"transaction_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	FeeID            uuid.UUID       `json:"fee_id" gorm:"type:uuid;not null;index"`
	StudentID        uuid.UUID       `json:"student_id" gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method           PaymentMethod   `json:"method" gorm:"type:varchar(16);not null"`
	Status           PaymentStatus   `json:"status" gorm:"type:varchar(16);not null;index"`
	GatewayOrderID   string          `json:"gateway_order_id,omitempty" gorm:"type:varchar(64);uniqueIndex:idx_payments_gateway_order,where:gateway_order_id <> ''"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty" gorm:"type:varchar(64)"`
	FailureReason    string          `json:"failure_reason,omitempty" gorm:"type:varchar(255)"`
	RecordedByUserID uuid.UUID       `json:"recorded_by_user_id" gorm:"type:uuid;not null"`
	SettledAt        *time.Time      `json:"settled_at"`
}

// NewCashPayment creates a settled cash payment. Cash is handed over at
// the school office, so the payment is born in SUCCESS status.
func NewCashPayment(
	ownerAdminID uuid.UUID,
	fee *Fee,
	transactionID string,
	amount valueobject.Money,
	recordedByUserID uuid.UUID,
	settledAt time.Time,
) (*Payment, error) {
	if fee == nil {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee cannot be nil")
	}
	if transactionID == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_ID", "Transaction ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if recordedByUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Recording user ID cannot be empty")
	}

	return &Payment{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerAdminID),
		TransactionID:      transactionID,
		FeeID:              fee.ID,
		StudentID:          fee.StudentID,
		Amount:             amount.Amount(),
		Method:             PaymentMethodCash,
		Status:             PaymentStatusSuccess,
		RecordedByUserID:   recordedByUserID,
		SettledAt:          &settledAt,
	}, nil
}

// NewOnlinePaymentOrder creates a PENDING online payment bound to a
// gateway order. The callback handler later resolves it to SUCCESS or
// FAILED by gateway order ID.
func NewOnlinePaymentOrder(
	ownerAdminID uuid.UUID,
	fee *Fee,
	transactionID string,
	gatewayOrderID string,
	amount valueobject.Money,
	initiatedByUserID uuid.UUID,
) (*Payment, error) {
	if fee == nil {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee cannot be nil")
	}
	if transactionID == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_ID", "Transaction ID cannot be empty")
	}
	if gatewayOrderID == "" {
		return nil, shared.NewDomainError("INVALID_GATEWAY_ORDER", "Gateway order ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if initiatedByUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Initiating user ID cannot be empty")
	}

	return &Payment{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerAdminID),
		TransactionID:      transactionID,
		FeeID:              fee.ID,
		StudentID:          fee.StudentID,
		Amount:             amount.Amount(),
		Method:             PaymentMethodOnline,
		Status:             PaymentStatusPending,
		GatewayOrderID:     gatewayOrderID,
		RecordedByUserID:   initiatedByUserID,
	}, nil
}

// MarkSucceeded transitions a PENDING payment to SUCCESS and records
// the gateway payment ID. Terminal statuses are immutable; calling this
// on an already-SUCCESS payment is the duplicate-callback case and
// reports INVALID_STATE so the caller can treat it as a no-op.
func (p *Payment) MarkSucceeded(gatewayPaymentID string, settledAt time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s payment as succeeded", p.Status))
	}

	p.Status = PaymentStatusSuccess
	p.GatewayPaymentID = gatewayPaymentID
	p.SettledAt = &settledAt
	p.FailureReason = ""
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// MarkFailed transitions a PENDING payment to FAILED with the gateway's
// error description. The associated fee is never touched.
func (p *Payment) MarkFailed(gatewayPaymentID, reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s payment as failed", p.Status))
	}

	p.Status = PaymentStatusFailed
	p.GatewayPaymentID = gatewayPaymentID
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.Amount)
}

// IsPending returns true if the payment awaits a gateway outcome
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsSuccess returns true if the payment settled
func (p *Payment) IsSuccess() bool {
	return p.Status == PaymentStatusSuccess
}
