package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// In-memory fakes with optimistic-lock semantics
// =============================================================================

type memFeeRepo struct {
	mu   sync.Mutex
	fees map[uuid.UUID]ledger.Fee

	// forceConflicts makes the next N SaveWithLock calls lose the
	// version race, regardless of state.
	forceConflicts int
}

func newMemFeeRepo() *memFeeRepo {
	return &memFeeRepo{fees: make(map[uuid.UUID]ledger.Fee)}
}

func (r *memFeeRepo) put(fee *ledger.Fee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees[fee.ID] = *fee
}

func (r *memFeeRepo) get(id uuid.UUID) ledger.Fee {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fees[id]
}

func (r *memFeeRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Fee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fee, ok := r.fees[id]
	if !ok {
		return nil, nil
	}
	found := fee
	return &found, nil
}

func (r *memFeeRepo) FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*ledger.Fee, error) {
	fee, err := r.FindByID(ctx, id)
	if err != nil || fee == nil {
		return fee, err
	}
	if fee.OwnerAdminID != ownerAdminID {
		return nil, nil
	}
	return fee, nil
}

func (r *memFeeRepo) FindByStudent(_ context.Context, ownerAdminID, studentID uuid.UUID, _ ledger.FeeFilter) ([]ledger.Fee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Fee
	for _, fee := range r.fees {
		if fee.OwnerAdminID == ownerAdminID && fee.StudentID == studentID {
			out = append(out, fee)
		}
	}
	return out, nil
}

func (r *memFeeRepo) FindAllForOwner(_ context.Context, ownerAdminID uuid.UUID, _ ledger.FeeFilter) ([]ledger.Fee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Fee
	for _, fee := range r.fees {
		if fee.OwnerAdminID == ownerAdminID {
			out = append(out, fee)
		}
	}
	return out, nil
}

func (r *memFeeRepo) FindOutstandingByStudent(_ context.Context, ownerAdminID, studentID uuid.UUID) ([]ledger.Fee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Fee
	for _, fee := range r.fees {
		if fee.OwnerAdminID == ownerAdminID && fee.StudentID == studentID && fee.Status.CanApplyPayment() {
			out = append(out, fee)
		}
	}
	return out, nil
}

func (r *memFeeRepo) Save(_ context.Context, fee *ledger.Fee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees[fee.ID] = *fee
	return nil
}

func (r *memFeeRepo) SaveWithLock(_ context.Context, fee *ledger.Fee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceConflicts > 0 {
		r.forceConflicts--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := r.fees[fee.ID]
	if ok && stored.Version >= fee.Version {
		return shared.ErrConcurrencyConflict
	}
	r.fees[fee.ID] = *fee
	return nil
}

func (r *memFeeRepo) CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter ledger.FeeFilter) (int64, error) {
	fees, err := r.FindAllForOwner(ctx, ownerAdminID, filter)
	return int64(len(fees)), err
}

func (r *memFeeRepo) SumOutstandingByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID) (decimal.Decimal, error) {
	fees, err := r.FindByStudent(ctx, ownerAdminID, studentID, ledger.FeeFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, fee := range fees {
		sum = sum.Add(fee.OutstandingAmount)
	}
	return sum, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]ledger.Payment

	// findErrs fails the next N FindByGatewayOrderID calls, simulating a
	// transient database outage.
	findErrs int

	// forceConflicts makes the next N SaveWithLock calls lose the
	// version race, regardless of state.
	forceConflicts int
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]ledger.Payment)}
}

func (r *memPaymentRepo) all() []ledger.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	found := p
	return &found, nil
}

func (r *memPaymentRepo) FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*ledger.Payment, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	if p.OwnerAdminID != ownerAdminID {
		return nil, nil
	}
	return p, nil
}

func (r *memPaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TransactionID == transactionID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErrs > 0 {
		r.findErrs--
		return nil, fmt.Errorf("connection reset by peer")
	}
	for _, p := range r.payments {
		if p.GatewayOrderID == gatewayOrderID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) FindByFee(_ context.Context, ownerAdminID, feeID uuid.UUID, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.payments {
		if p.OwnerAdminID == ownerAdminID && p.FeeID == feeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindByStudent(_ context.Context, ownerAdminID, studentID uuid.UUID, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.payments {
		if p.OwnerAdminID == ownerAdminID && p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *ledger.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.payments {
		if id != payment.ID && p.GatewayOrderID != "" && p.GatewayOrderID == payment.GatewayOrderID {
			return shared.ErrDuplicateResource
		}
	}
	r.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) SaveWithLock(_ context.Context, payment *ledger.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceConflicts > 0 {
		r.forceConflicts--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := r.payments[payment.ID]
	if ok && stored.Version >= payment.Version {
		return shared.ErrConcurrencyConflict
	}
	r.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) CountForOwner(_ context.Context, ownerAdminID uuid.UUID, _ ledger.PaymentFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.payments {
		if p.OwnerAdminID == ownerAdminID {
			n++
		}
	}
	return n, nil
}

type memStudentRepo struct {
	mu       sync.Mutex
	students map[uuid.UUID]school.Student
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: make(map[uuid.UUID]school.Student)}
}

func (r *memStudentRepo) put(s *school.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.ID] = *s
}

func (r *memStudentRepo) FindByID(_ context.Context, id uuid.UUID) (*school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, nil
	}
	found := s
	return &found, nil
}

func (r *memStudentRepo) FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*school.Student, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	if s.OwnerAdminID != ownerAdminID {
		return nil, nil
	}
	return s, nil
}

func (r *memStudentRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.UserID == userID {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memStudentRepo) FindAllForOwner(_ context.Context, ownerAdminID uuid.UUID, _ school.StudentFilter) ([]school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []school.Student
	for _, s := range r.students {
		if s.OwnerAdminID == ownerAdminID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStudentRepo) ExistsByMobileNo(_ context.Context, ownerAdminID uuid.UUID, mobileNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.OwnerAdminID == ownerAdminID && s.MobileNo == mobileNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStudentRepo) ExistsByStudentCode(_ context.Context, ownerAdminID uuid.UUID, studentCode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.OwnerAdminID == ownerAdminID && s.StudentCode == studentCode {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStudentRepo) Save(_ context.Context, student *school.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[student.ID] = *student
	return nil
}

func (r *memStudentRepo) SaveWithLock(_ context.Context, student *school.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.students[student.ID]
	if ok && stored.Version >= student.Version {
		return shared.ErrConcurrencyConflict
	}
	r.students[student.ID] = *student
	return nil
}

func (r *memStudentRepo) CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter school.StudentFilter) (int64, error) {
	students, err := r.FindAllForOwner(ctx, ownerAdminID, filter)
	return int64(len(students)), err
}

// memUnitOfWork mirrors the transactional writer: the payment insert
// only lands if the fee CAS goes through.
type memUnitOfWork struct {
	feeRepo     *memFeeRepo
	paymentRepo *memPaymentRepo
}

func (u *memUnitOfWork) SaveFeeAndPayment(ctx context.Context, fee *ledger.Fee, payment *ledger.Payment) error {
	if err := u.feeRepo.SaveWithLock(ctx, fee); err != nil {
		return err
	}
	return u.paymentRepo.Save(ctx, payment)
}

type memIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{keys: make(map[string]bool)}
}

func (s *memIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

// expire drops a key, simulating TTL expiry between deliveries.
func (s *memIdempotencyStore) expire(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

func (s *memIdempotencyStore) Close() error { return nil }

type stubVerifier struct {
	rejectSignature string
}

func (v *stubVerifier) Verify(cb *ledger.Callback) error {
	if v.rejectSignature != "" && cb.Signature == v.rejectSignature {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

type stubOrderGateway struct {
	mu     sync.Mutex
	orders int
	err    error
}

func (g *stubOrderGateway) CreateOrder(_ context.Context, _ decimal.Decimal, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders++
	return fmt.Sprintf("order_%06d", g.orders), nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
