package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CallbackStatus is the outcome the gateway reports for a payment
type CallbackStatus string

const (
	CallbackStatusSuccess CallbackStatus = "SUCCESS"
	CallbackStatusFailed  CallbackStatus = "FAILED"
)

// IsValid checks if the callback status is valid
func (s CallbackStatus) IsValid() bool {
	return s == CallbackStatusSuccess || s == CallbackStatusFailed
}

// Callback is a payment notification delivered by the gateway. The
// gateway may deliver it more than once; processing must be idempotent
// keyed on GatewayOrderID.
type Callback struct {
	// GatewayOrderID is the order reference issued when the payment order was created
	GatewayOrderID string
	// GatewayPaymentID is the gateway's identifier for this payment attempt
	GatewayPaymentID string
	// Status is the reported outcome
	Status CallbackStatus
	// Amount is the amount the gateway settled (or attempted)
	Amount decimal.Decimal
	// ErrorDescription carries the gateway's failure reason when Status is FAILED
	ErrorDescription string
	// OccurredAt is when the gateway recorded the outcome
	OccurredAt time.Time
	// Signature authenticates the callback; verified before any state change
	Signature string
}

// OrderGateway creates payment orders at the external gateway so the
// client can complete checkout against them.
type OrderGateway interface {
	// CreateOrder registers an order for the amount and returns the
	// gateway's order ID (the key later carried on callbacks).
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (string, error)
}

// SignatureVerifier authenticates gateway callbacks. Implementations
// live in the infrastructure layer (HMAC over the order and payment
// identifiers, keyed with the gateway secret).
type SignatureVerifier interface {
	// Verify returns nil if the signature matches the callback contents
	Verify(cb *Callback) error
}
