package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentOrderService opens online payment orders at the gateway. The
// PENDING payment row created here carries the target fee, so the
// later callback is a pure keyed state transition instead of a guess
// about which fee the money was for.
type PaymentOrderService struct {
	guard       *OwnershipGuard
	paymentRepo ledger.PaymentRepository
	gateway     ledger.OrderGateway
	clock       shared.Clock
	log         *zap.Logger
}

// NewPaymentOrderService creates a new PaymentOrderService
func NewPaymentOrderService(
	guard *OwnershipGuard,
	paymentRepo ledger.PaymentRepository,
	gateway ledger.OrderGateway,
	clock shared.Clock,
	log *zap.Logger,
) *PaymentOrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentOrderService{
		guard:       guard,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		clock:       clock,
		log:         log,
	}
}

// CreatePaymentOrder validates ownership and amount, registers an order
// with the gateway, and persists the provisional PENDING payment.
func (s *PaymentOrderService) CreatePaymentOrder(ctx context.Context, req CreatePaymentOrderRequest, actorAdminID uuid.UUID) (*PaymentOrderResponse, error) {
	amount := valueobject.NewMoney(req.Amount)

	student, fee, err := s.guard.ResolveChain(ctx, actorAdminID, req.StudentID, req.FeeID)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot open a payment order for a deactivated student")
	}

	// Validate against the fee up front; the gateway order should never
	// be opened for an amount the ledger would later reject.
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(fee.OutstandingAmount) {
		return nil, shared.NewDomainError("EXCEEDS_OUTSTANDING", "Payment amount exceeds the outstanding balance")
	}
	if !fee.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", "Fee is already fully paid")
	}

	transactionID := generateOnlineTransactionID(s.clock)

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, amount.Amount(), transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment, err := ledger.NewOnlinePaymentOrder(actorAdminID, fee, transactionID, gatewayOrderID, amount, actorAdminID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("Payment order opened",
		zap.String("transaction_id", transactionID),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.String("fee_id", fee.ID.String()),
		zap.String("amount", amount.StringFixed(2)))

	return &PaymentOrderResponse{
		PaymentID:      payment.ID,
		TransactionID:  payment.TransactionID,
		GatewayOrderID: payment.GatewayOrderID,
		Amount:         payment.Amount,
		Status:         string(payment.Status),
	}, nil
}

func generateOnlineTransactionID(clock shared.Clock) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("ONLINE-%d-%s", clock.Now().UnixNano(), hex.EncodeToString(suffix))
}
