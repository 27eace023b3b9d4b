package ledger

import (
	"context"
	"errors"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnershipGuard resolves ledger and school records while enforcing the
// ownership chain admin -> student -> fee. Unknown ids surface as
// NOT_FOUND; records that exist but belong to someone else surface as
// OWNERSHIP_VIOLATION, so the HTTP layer can answer 404 versus 403.
// The guard only reads; callers decide what to do with the aggregates.
type OwnershipGuard struct {
	feeRepo     ledger.FeeRepository
	studentRepo school.StudentRepository
}

// NewOwnershipGuard creates a new OwnershipGuard
func NewOwnershipGuard(feeRepo ledger.FeeRepository, studentRepo school.StudentRepository) *OwnershipGuard {
	return &OwnershipGuard{
		feeRepo:     feeRepo,
		studentRepo: studentRepo,
	}
}

// VerifyStudentBelongsToAdmin resolves the student and checks it is
// owned by the given admin.
func (g *OwnershipGuard) VerifyStudentBelongsToAdmin(ctx context.Context, studentID, adminID uuid.UUID) (*school.Student, error) {
	student, err := g.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.ErrNotFound
	}
	if student.OwnerAdminID != adminID {
		return nil, shared.ErrOwnershipViolation
	}
	return student, nil
}

// VerifyFeeBelongsToStudent resolves the fee and checks it is charged
// to the given student.
func (g *OwnershipGuard) VerifyFeeBelongsToStudent(ctx context.Context, feeID, studentID uuid.UUID) (*ledger.Fee, error) {
	fee, err := g.feeRepo.FindByID(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, shared.ErrNotFound
	}
	if fee.StudentID != studentID {
		return nil, shared.ErrOwnershipViolation
	}
	return fee, nil
}

// ResolveChain verifies admin -> student -> fee in one call and returns
// both aggregates.
func (g *OwnershipGuard) ResolveChain(ctx context.Context, adminID, studentID, feeID uuid.UUID) (*school.Student, *ledger.Fee, error) {
	student, err := g.VerifyStudentBelongsToAdmin(ctx, studentID, adminID)
	if err != nil {
		return nil, nil, err
	}
	fee, err := g.VerifyFeeBelongsToStudent(ctx, feeID, studentID)
	if err != nil {
		return nil, nil, err
	}
	return student, fee, nil
}

// IsOwnershipViolation reports whether the error is the mismatch case
func IsOwnershipViolation(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "OWNERSHIP_VIOLATION"
}
