package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// GatewayCallbackService resolves gateway payment notifications into
// ledger state. Signature verification runs before any state change;
// everything after is idempotent keyed on the gateway order id, so
// at-least-once delivery collapses to a single ledger effect.
type GatewayCallbackService struct {
	verifier    ledger.SignatureVerifier
	paymentRepo ledger.PaymentRepository
	feeRepo     ledger.FeeRepository
	uow         ledger.UnitOfWork
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	clock       shared.Clock
	log         *zap.Logger
}

// NewGatewayCallbackService creates a new GatewayCallbackService
func NewGatewayCallbackService(
	verifier ledger.SignatureVerifier,
	paymentRepo ledger.PaymentRepository,
	feeRepo ledger.FeeRepository,
	uow ledger.UnitOfWork,
	idempotency shared.IdempotencyStore,
	idemCfg shared.IdempotencyConfig,
	clock shared.Clock,
	log *zap.Logger,
) *GatewayCallbackService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GatewayCallbackService{
		verifier:    verifier,
		paymentRepo: paymentRepo,
		feeRepo:     feeRepo,
		uow:         uow,
		idempotency: idempotency,
		idemCfg:     idemCfg,
		clock:       clock,
		log:         log,
	}
}

// HandleGatewayCallback processes one callback delivery. A repeat of an
// already-applied terminal status is a successful no-op; a conflicting
// terminal status is CONCURRENCY_CONFLICT. Only a verified success
// callback reaches the fee balance.
func (s *GatewayCallbackService) HandleGatewayCallback(ctx context.Context, req GatewayCallbackRequest) (*CallbackResult, error) {
	cb := &ledger.Callback{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Status:           ledger.CallbackStatus(req.Status),
		Amount:           req.Amount,
		ErrorDescription: req.ErrorDescription,
		OccurredAt:       s.clock.Now(),
		Signature:        req.Signature,
	}

	if err := s.verifier.Verify(cb); err != nil {
		s.log.Warn("Callback signature verification failed",
			zap.String("gateway_order_id", cb.GatewayOrderID),
			zap.Error(err))
		return nil, shared.ErrSignatureInvalid
	}

	s.log.Info("Gateway callback received",
		zap.String("gateway_order_id", cb.GatewayOrderID),
		zap.String("gateway_payment_id", cb.GatewayPaymentID),
		zap.String("status", string(cb.Status)))

	// Fast path: the store remembers (order, status) pairs already
	// applied. The status CAS below remains the authoritative check.
	idemKey := callbackKey(cb)
	if s.idemCfg.Enabled && s.idempotency != nil {
		processed, err := s.idempotency.IsProcessed(ctx, idemKey)
		if err != nil {
			s.log.Warn("Idempotency store unavailable, relying on database constraints", zap.Error(err))
		} else if processed {
			s.log.Info("Callback already processed (idempotency fast path)",
				zap.String("gateway_order_id", cb.GatewayOrderID))
			return &CallbackResult{Processed: true, AlreadyProcessed: true}, nil
		}
	}

	result, err := s.applyCallback(ctx, req, cb)
	if err != nil {
		return nil, err
	}

	// The key is marked only after the ledger effect committed, so a
	// crash or transient failure mid-apply never shadows a retry. A
	// failed mark just means the next delivery takes the slow path.
	if s.idemCfg.Enabled && s.idempotency != nil {
		if _, merr := s.idempotency.MarkProcessed(ctx, idemKey, s.idemCfg.TTL); merr != nil {
			s.log.Warn("Failed to mark callback as processed", zap.Error(merr))
		}
	}
	return result, nil
}

func (s *GatewayCallbackService) applyCallback(ctx context.Context, req GatewayCallbackRequest, cb *ledger.Callback) (*CallbackResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxLockRetries; attempt++ {
		payment, err := s.paymentRepo.FindByGatewayOrderID(ctx, cb.GatewayOrderID)
		if err != nil {
			return nil, err
		}
		if payment == nil {
			payment, err = s.synthesizePayment(ctx, req, cb)
			if err != nil {
				return nil, err
			}
		}

		// Status CAS: terminal payments never transition again.
		if payment.Status.IsTerminal() {
			if terminalStatusFor(cb.Status) == payment.Status {
				s.log.Info("Callback repeats applied terminal status, no-op",
					zap.String("gateway_order_id", cb.GatewayOrderID),
					zap.String("status", string(payment.Status)))
				return &CallbackResult{Processed: true, AlreadyProcessed: true, PaymentStatus: string(payment.Status)}, nil
			}
			s.log.Error("Callback conflicts with applied terminal status",
				zap.String("gateway_order_id", cb.GatewayOrderID),
				zap.String("applied", string(payment.Status)),
				zap.String("reported", string(cb.Status)))
			return nil, shared.ErrConcurrencyConflict
		}

		var result *CallbackResult
		if cb.Status == ledger.CallbackStatusFailed {
			result, err = s.applyFailure(ctx, payment, cb)
		} else {
			result, err = s.applySuccess(ctx, payment, cb)
		}

		// A version race means someone else moved this payment; the
		// reload either sees their terminal state and collapses to the
		// no-op or conflict branch above, or retries the write.
		var de *shared.DomainError
		if errors.As(err, &de) && de.Code == "CONCURRENCY_CONFLICT" {
			lastErr = err
			s.log.Warn("Callback lost version race, retrying",
				zap.String("gateway_order_id", cb.GatewayOrderID),
				zap.Int("attempt", attempt+1))
			continue
		}
		return result, err
	}
	return nil, lastErr
}

// applySuccess settles the payment and credits the fee. The amount
// credited is the one fixed at order creation, not whatever the
// callback claims.
func (s *GatewayCallbackService) applySuccess(ctx context.Context, payment *ledger.Payment, cb *ledger.Callback) (*CallbackResult, error) {
	fee, err := s.feeRepo.FindByID(ctx, payment.FeeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, fmt.Errorf("fee %s referenced by payment %s: %w", payment.FeeID, payment.ID, shared.ErrNotFound)
	}

	if !cb.Amount.IsZero() && !cb.Amount.Equal(payment.Amount) {
		s.log.Warn("Callback amount differs from order amount, crediting order amount",
			zap.String("gateway_order_id", cb.GatewayOrderID),
			zap.String("order_amount", payment.Amount.String()),
			zap.String("callback_amount", cb.Amount.String()))
	}

	creditFee := true
	if err := fee.ApplyPayment(valueobject.NewMoney(payment.Amount)); err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) && (de.Code == "INVALID_STATE" || de.Code == "EXCEEDS_OUTSTANDING") {
			// Money settled at the gateway but the ledger moved on
			// (e.g. a cash deposit raced the online payment). The
			// balance stays untouched; a human sorts out the excess.
			s.log.Warn("Settled payment cannot credit fee, flagging for manual reconciliation",
				zap.String("gateway_order_id", cb.GatewayOrderID),
				zap.String("fee_id", fee.ID.String()),
				zap.String("fee_status", string(fee.Status)),
				zap.String("reason", de.Code))
			creditFee = false
		} else {
			return nil, err
		}
	}

	if err := payment.MarkSucceeded(cb.GatewayPaymentID, cb.OccurredAt); err != nil {
		return nil, err
	}

	if creditFee {
		if err := s.uow.SaveFeeAndPayment(ctx, fee, payment); err != nil {
			return nil, err
		}
	} else {
		if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
			return nil, err
		}
	}

	s.log.Info("Gateway payment settled",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("gateway_payment_id", payment.GatewayPaymentID),
		zap.String("fee_id", fee.ID.String()),
		zap.Bool("fee_credited", creditFee))

	return &CallbackResult{Processed: true, PaymentStatus: string(payment.Status)}, nil
}

// applyFailure records the gateway's failure verdict. The fee is never
// touched; a failed attempt is an audit record, not an infrastructure
// error, so the handler reports success.
func (s *GatewayCallbackService) applyFailure(ctx context.Context, payment *ledger.Payment, cb *ledger.Callback) (*CallbackResult, error) {
	if err := payment.MarkFailed(cb.GatewayPaymentID, cb.ErrorDescription); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("Gateway payment failed",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("gateway_order_id", cb.GatewayOrderID),
		zap.String("reason", cb.ErrorDescription))

	return &CallbackResult{Processed: true, PaymentStatus: string(payment.Status)}, nil
}

// synthesizePayment is the last-resort path for callbacks whose order
// was never recorded locally (the order-creation flow makes this the
// exception). It needs the fee and student carried in the callback
// notes; without them there is nothing to attach the money to.
func (s *GatewayCallbackService) synthesizePayment(ctx context.Context, req GatewayCallbackRequest, cb *ledger.Callback) (*ledger.Payment, error) {
	if req.FeeID == nil || req.StudentID == nil {
		s.log.Error("Callback references unknown gateway order and carries no notes",
			zap.String("gateway_order_id", cb.GatewayOrderID))
		return nil, shared.ErrNotFound
	}

	fee, err := s.feeRepo.FindByID(ctx, *req.FeeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, shared.ErrNotFound
	}
	if fee.StudentID != *req.StudentID {
		return nil, shared.ErrOwnershipViolation
	}

	amount := cb.Amount
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cannot synthesize a payment without an amount")
	}

	s.log.Error("Synthesizing payment record for unmatched gateway order",
		zap.String("gateway_order_id", cb.GatewayOrderID),
		zap.String("fee_id", fee.ID.String()),
		zap.String("amount", amount.String()))

	payment, err := ledger.NewOnlinePaymentOrder(
		fee.OwnerAdminID,
		fee,
		generateOnlineTransactionID(s.clock),
		cb.GatewayOrderID,
		valueobject.NewMoney(amount),
		fee.OwnerAdminID,
	)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func callbackKey(cb *ledger.Callback) string {
	return fmt.Sprintf("callback:%s:%s", cb.GatewayOrderID, cb.Status)
}

func terminalStatusFor(status ledger.CallbackStatus) ledger.PaymentStatus {
	if status == ledger.CallbackStatusSuccess {
		return ledger.PaymentStatusSuccess
	}
	return ledger.PaymentStatusFailed
}
