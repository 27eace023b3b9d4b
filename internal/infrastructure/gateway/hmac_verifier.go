package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
)

// HMACVerifier implements ledger.SignatureVerifier using the Razorpay
// scheme: HMAC-SHA256 over "<order_id>|<payment_id>" keyed with the
// webhook secret, hex encoded.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier with the given webhook secret
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify checks the callback signature. Comparison is constant-time.
func (v *HMACVerifier) Verify(cb *ledger.Callback) error {
	if cb.Signature == "" {
		return shared.ErrSignatureInvalid
	}

	expected := v.Sign(cb.GatewayOrderID, cb.GatewayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(cb.Signature)) {
		return shared.ErrSignatureInvalid
	}
	return nil
}

// Sign computes the signature for an order/payment pair. Exposed for
// tests and for building outbound requests that need signing.
func (v *HMACVerifier) Sign(gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ ledger.SignatureVerifier = (*HMACVerifier)(nil)
