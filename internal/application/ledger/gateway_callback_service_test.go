package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callbackFixture struct {
	*fixture
	svc     *GatewayCallbackService
	store   *memIdempotencyStore
	payment *ledger.Payment
}

// newCallbackFixture opens a PENDING online order for 2000 against the
// fixture fee, the way the order-creation flow would.
func newCallbackFixture(t *testing.T) *callbackFixture {
	t.Helper()
	f := newFixture(t)

	payment, err := ledger.NewOnlinePaymentOrder(
		f.adminID, f.fee, "ONLINE-1756400000000000000-a1b2", "order_000001",
		valueobject.NewMoneyFromInt(2000), f.adminID,
	)
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(context.Background(), payment))

	store := newMemIdempotencyStore()
	svc := NewGatewayCallbackService(
		&stubVerifier{rejectSignature: "bad-signature"},
		f.paymentRepo,
		f.feeRepo,
		f.uow,
		store,
		shared.DefaultIdempotencyConfig(),
		fixedClock{now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)},
		nil,
	)

	return &callbackFixture{fixture: f, svc: svc, store: store, payment: payment}
}

func successCallback(cf *callbackFixture) GatewayCallbackRequest {
	return GatewayCallbackRequest{
		GatewayOrderID:   cf.payment.GatewayOrderID,
		GatewayPaymentID: "pay_29QQoUBi66xm2f",
		Status:           "SUCCESS",
		Amount:           decimal.NewFromInt(2000),
		Signature:        "good-signature",
	}
}

func TestHandleGatewayCallback_Success(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	result, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, "SUCCESS", result.PaymentStatus)

	fee := cf.feeRepo.get(cf.fee.ID)
	assert.Equal(t, "2000", fee.AmountPaid.String())
	assert.Equal(t, "3000", fee.OutstandingAmount.String())
	assert.Equal(t, ledger.FeeStatusPartiallyPaid, fee.Status)

	stored, err := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, ledger.PaymentStatusSuccess, stored.Status)
	assert.Equal(t, "pay_29QQoUBi66xm2f", stored.GatewayPaymentID)
	require.NotNil(t, stored.SettledAt)
}

func TestHandleGatewayCallback_SignatureFailureMutatesNothing(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	req := successCallback(cf)
	req.Signature = "bad-signature"

	_, err := cf.svc.HandleGatewayCallback(ctx, req)
	assertCode(t, err, "SIGNATURE_VERIFICATION_FAILED")

	// no state change anywhere
	fee := cf.feeRepo.get(cf.fee.ID)
	assert.True(t, fee.AmountPaid.IsZero())
	stored, _ := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	assert.Equal(t, ledger.PaymentStatusPending, stored.Status)
}

func TestHandleGatewayCallback_DuplicateDeliveryIsNoOp(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	_, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)

	result, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)

	// the fee was credited exactly once
	fee := cf.feeRepo.get(cf.fee.ID)
	assert.Equal(t, "2000", fee.AmountPaid.String())
}

func TestHandleGatewayCallback_DuplicateWithoutFastPath(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	_, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)

	// simulate TTL expiry: the fast path forgets, the status CAS still holds
	cf.store.expire("callback:order_000001:SUCCESS")

	result, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)

	fee := cf.feeRepo.get(cf.fee.ID)
	assert.Equal(t, "2000", fee.AmountPaid.String())
}

func TestHandleGatewayCallback_Failed(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	req := successCallback(cf)
	req.Status = "FAILED"
	req.ErrorDescription = "card declined by issuing bank"

	result, err := cf.svc.HandleGatewayCallback(ctx, req)
	require.NoError(t, err, "a failed payment is a business outcome, not a handler error")
	assert.True(t, result.Processed)
	assert.Equal(t, "FAILED", result.PaymentStatus)

	// fee balances never move on failure
	fee := cf.feeRepo.get(cf.fee.ID)
	assert.True(t, fee.AmountPaid.IsZero())
	assert.Equal(t, ledger.FeeStatusPending, fee.Status)

	stored, _ := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	assert.Equal(t, ledger.PaymentStatusFailed, stored.Status)
	assert.Equal(t, "card declined by issuing bank", stored.FailureReason)
}

func TestHandleGatewayCallback_ConflictingTerminalStatus(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	_, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)

	req := successCallback(cf)
	req.Status = "FAILED"
	req.ErrorDescription = "late failure"

	_, err = cf.svc.HandleGatewayCallback(ctx, req)
	assertCode(t, err, "CONCURRENCY_CONFLICT")

	// the applied outcome stands
	stored, _ := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	assert.Equal(t, ledger.PaymentStatusSuccess, stored.Status)
}

func TestHandleGatewayCallback_UnknownOrder(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	req := successCallback(cf)
	req.GatewayOrderID = "order_never_created"

	_, err := cf.svc.HandleGatewayCallback(ctx, req)
	assertCode(t, err, "NOT_FOUND")
}

func TestHandleGatewayCallback_SynthesizesFromNotes(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	req := successCallback(cf)
	req.GatewayOrderID = "order_untracked"
	req.Amount = decimal.NewFromInt(500)
	req.StudentID = &cf.student.ID
	req.FeeID = &cf.fee.ID

	result, err := cf.svc.HandleGatewayCallback(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", result.PaymentStatus)

	fee := cf.feeRepo.get(cf.fee.ID)
	assert.Equal(t, "500", fee.AmountPaid.String())

	synthesized, err := cf.paymentRepo.FindByGatewayOrderID(ctx, "order_untracked")
	require.NoError(t, err)
	require.NotNil(t, synthesized)
	assert.Equal(t, ledger.PaymentStatusSuccess, synthesized.Status)
	assert.Equal(t, cf.fee.ID, synthesized.FeeID)
}

func TestHandleGatewayCallback_SynthesisRejectsForeignFee(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	other := uuid.New()
	req := successCallback(cf)
	req.GatewayOrderID = "order_untracked"
	req.Amount = decimal.NewFromInt(500)
	req.StudentID = &other
	req.FeeID = &cf.fee.ID

	_, err := cf.svc.HandleGatewayCallback(ctx, req)
	assertCode(t, err, "OWNERSHIP_VIOLATION")
}

func TestHandleGatewayCallback_SuccessAgainstPaidFee(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	// a cash deposit settles the fee while the online order is in flight
	fee := cf.feeRepo.get(cf.fee.ID)
	require.NoError(t, fee.ApplyPayment(valueobject.NewMoneyFromInt(5000)))
	cf.feeRepo.put(&fee)

	result, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", result.PaymentStatus)

	// outstanding never goes negative; the balance is untouched
	after := cf.feeRepo.get(cf.fee.ID)
	assert.True(t, after.OutstandingAmount.IsZero())
	assert.Equal(t, "5000", after.AmountPaid.String())

	// the settled payment is still recorded for reconciliation
	stored, _ := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	assert.Equal(t, ledger.PaymentStatusSuccess, stored.Status)
}

func TestHandleGatewayCallback_TransientFailureDoesNotMarkKey(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	// the database blips on the first delivery
	cf.paymentRepo.findErrs = 1

	_, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.Error(t, err)

	processed, err := cf.store.IsProcessed(ctx, "callback:order_000001:SUCCESS")
	require.NoError(t, err)
	assert.False(t, processed, "key must not be marked before the ledger effect lands")

	// the gateway's retry applies the ledger effect for real
	result, err := cf.svc.HandleGatewayCallback(ctx, successCallback(cf))
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.False(t, result.AlreadyProcessed)

	fee := cf.feeRepo.get(cf.fee.ID)
	assert.Equal(t, "2000", fee.AmountPaid.String())

	stored, _ := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	assert.Equal(t, ledger.PaymentStatusSuccess, stored.Status)
}

func TestHandleGatewayCallback_FailedStatusRetriesVersionRace(t *testing.T) {
	cf := newCallbackFixture(t)
	ctx := context.Background()

	// another writer bumps the payment version under the first attempt
	cf.paymentRepo.forceConflicts = 1

	req := successCallback(cf)
	req.Status = "FAILED"
	req.ErrorDescription = "card declined by issuing bank"

	result, err := cf.svc.HandleGatewayCallback(ctx, req)
	require.NoError(t, err, "a lost version race should retry, not surface a conflict")
	assert.True(t, result.Processed)
	assert.Equal(t, "FAILED", result.PaymentStatus)

	stored, _ := cf.paymentRepo.FindByGatewayOrderID(ctx, cf.payment.GatewayOrderID)
	assert.Equal(t, ledger.PaymentStatusFailed, stored.Status)

	fee := cf.feeRepo.get(cf.fee.ID)
	assert.True(t, fee.AmountPaid.IsZero())
}
