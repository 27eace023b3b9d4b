package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLockRetries bounds how often a service reloads and re-applies a
// mutation after losing an optimistic-lock race.
const maxLockRetries = 3

// CashPaymentService records cash handed over at the school office.
// The fee update and the payment row commit in one database
// transaction; a partial write is never observable.
type CashPaymentService struct {
	guard *OwnershipGuard
	uow   ledger.UnitOfWork
	clock shared.Clock
	log   *zap.Logger
}

// NewCashPaymentService creates a new CashPaymentService
func NewCashPaymentService(guard *OwnershipGuard, uow ledger.UnitOfWork, clock shared.Clock, log *zap.Logger) *CashPaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CashPaymentService{
		guard: guard,
		uow:   uow,
		clock: clock,
		log:   log,
	}
}

// RecordCashPayment applies a cash deposit against a fee on behalf of
// the recording admin. Lost optimistic-lock races are retried with a
// fresh read before CONCURRENCY_CONFLICT is surfaced.
func (s *CashPaymentService) RecordCashPayment(ctx context.Context, req RecordCashPaymentRequest, recordingAdminID uuid.UUID) (*CashPaymentResult, error) {
	amount := valueobject.NewMoney(req.Amount)

	var lastErr error
	for attempt := 0; attempt < maxLockRetries; attempt++ {
		student, fee, err := s.guard.ResolveChain(ctx, recordingAdminID, req.StudentID, req.FeeID)
		if err != nil {
			return nil, err
		}
		if !student.Active {
			return nil, shared.NewDomainError("INVALID_STATE", "Cannot record payment for a deactivated student")
		}

		if err := fee.ApplyPayment(amount); err != nil {
			return nil, err
		}

		settledAt := s.clock.Now()
		payment, err := ledger.NewCashPayment(
			recordingAdminID,
			fee,
			generateCashTransactionID(s.clock),
			amount,
			recordingAdminID,
			settledAt,
		)
		if err != nil {
			return nil, err
		}

		if err := s.uow.SaveFeeAndPayment(ctx, fee, payment); err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) && de.Code == "CONCURRENCY_CONFLICT" {
				lastErr = err
				s.log.Warn("Cash payment lost version race, retrying",
					zap.String("fee_id", fee.ID.String()),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		s.log.Info("Cash payment recorded",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("fee_id", fee.ID.String()),
			zap.String("student_id", student.ID.String()),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("recorded_by", recordingAdminID.String()))

		return &CashPaymentResult{
			Fee:     ToFeeResponse(fee),
			Payment: ToPaymentResponse(payment),
		}, nil
	}

	return nil, lastErr
}

// generateCashTransactionID builds a locally unique cash reference,
// e.g. "CASH-1756400000123456789-a3f1". The random suffix keeps
// back-to-back deposits within a clock tick distinct.
func generateCashTransactionID(clock shared.Clock) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("CASH-%d-%s", clock.Now().UnixNano(), hex.EncodeToString(suffix))
}
