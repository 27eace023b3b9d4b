package ledger

import (
	"context"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// FeeService handles fee charging and ledger queries
type FeeService struct {
	guard       *OwnershipGuard
	feeRepo     ledger.FeeRepository
	paymentRepo ledger.PaymentRepository
}

// NewFeeService creates a new FeeService
func NewFeeService(guard *OwnershipGuard, feeRepo ledger.FeeRepository, paymentRepo ledger.PaymentRepository) *FeeService {
	return &FeeService{
		guard:       guard,
		feeRepo:     feeRepo,
		paymentRepo: paymentRepo,
	}
}

// CreateFee charges a new fee to a student
func (s *FeeService) CreateFee(ctx context.Context, req CreateFeeRequest, ownerAdminID uuid.UUID) (*FeeResponse, error) {
	student, err := s.guard.VerifyStudentBelongsToAdmin(ctx, req.StudentID, ownerAdminID)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot charge a fee to a deactivated student")
	}

	fee, err := ledger.NewFee(
		ownerAdminID,
		student.ID,
		ledger.FeeType(req.FeeType),
		req.Description,
		valueobject.NewMoney(req.Amount),
		req.DueDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.feeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}

	response := ToFeeResponse(fee)
	return &response, nil
}

// GetFee retrieves a single fee scoped to the owning admin
func (s *FeeService) GetFee(ctx context.Context, feeID, ownerAdminID uuid.UUID) (*FeeResponse, error) {
	fee, err := s.feeRepo.FindByIDForOwner(ctx, ownerAdminID, feeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, shared.ErrNotFound
	}

	response := ToFeeResponse(fee)
	return &response, nil
}

// GetFeesForStudent lists a student's fees after the ownership check
func (s *FeeService) GetFeesForStudent(ctx context.Context, studentID, ownerAdminID uuid.UUID, filter FeeListFilter) ([]FeeResponse, error) {
	if _, err := s.guard.VerifyStudentBelongsToAdmin(ctx, studentID, ownerAdminID); err != nil {
		return nil, err
	}

	fees, err := s.feeRepo.FindByStudent(ctx, ownerAdminID, studentID, buildFeeFilter(filter))
	if err != nil {
		return nil, err
	}

	return ToFeeResponses(fees), nil
}

// GetPaymentHistory lists a student's payments after the ownership check
func (s *FeeService) GetPaymentHistory(ctx context.Context, studentID, ownerAdminID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.guard.VerifyStudentBelongsToAdmin(ctx, studentID, ownerAdminID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByStudent(ctx, ownerAdminID, studentID, ledger.PaymentFilter{Filter: shared.DefaultFilter()})
	if err != nil {
		return nil, err
	}

	return ToPaymentResponses(payments), nil
}

// GetOutstandingForStudent returns the student's unsettled fees and
// their total. The total is summed database-side, not from the page of
// fee rows.
func (s *FeeService) GetOutstandingForStudent(ctx context.Context, studentID, ownerAdminID uuid.UUID) (*OutstandingResponse, error) {
	if _, err := s.guard.VerifyStudentBelongsToAdmin(ctx, studentID, ownerAdminID); err != nil {
		return nil, err
	}

	fees, err := s.feeRepo.FindOutstandingByStudent(ctx, ownerAdminID, studentID)
	if err != nil {
		return nil, err
	}
	total, err := s.feeRepo.SumOutstandingByStudent(ctx, ownerAdminID, studentID)
	if err != nil {
		return nil, err
	}

	return &OutstandingResponse{
		StudentID:        studentID,
		TotalOutstanding: total,
		Fees:             ToFeeResponses(fees),
	}, nil
}

// GetPaymentsForFee lists the payments recorded against one fee
func (s *FeeService) GetPaymentsForFee(ctx context.Context, feeID, ownerAdminID uuid.UUID) ([]PaymentResponse, error) {
	fee, err := s.feeRepo.FindByIDForOwner(ctx, ownerAdminID, feeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, shared.ErrNotFound
	}

	payments, err := s.paymentRepo.FindByFee(ctx, ownerAdminID, feeID, ledger.PaymentFilter{Filter: shared.DefaultFilter()})
	if err != nil {
		return nil, err
	}

	return ToPaymentResponses(payments), nil
}

// GetPaymentByTransactionID resolves a receipt number to its payment.
// A payment belonging to another school reads as not found.
func (s *FeeService) GetPaymentByTransactionID(ctx context.Context, transactionID string, ownerAdminID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.OwnerAdminID != ownerAdminID {
		return nil, shared.ErrNotFound
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListFees lists all fees for the owning admin
func (s *FeeService) ListFees(ctx context.Context, ownerAdminID uuid.UUID, filter FeeListFilter) ([]FeeResponse, int64, error) {
	domainFilter := buildFeeFilter(filter)

	fees, err := s.feeRepo.FindAllForOwner(ctx, ownerAdminID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.feeRepo.CountForOwner(ctx, ownerAdminID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToFeeResponses(fees), total, nil
}

func buildFeeFilter(filter FeeListFilter) ledger.FeeFilter {
	base := shared.DefaultFilter()
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}

	out := ledger.FeeFilter{Filter: base}
	if filter.Status != "" {
		status := ledger.FeeStatus(filter.Status)
		out.Status = &status
	}
	if filter.FeeType != "" {
		feeType := ledger.FeeType(filter.FeeType)
		out.FeeType = &feeType
	}
	return out
}
