package ledger

import (
	"context"
	"time"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeFilter defines filtering options for fee queries
type FeeFilter struct {
	shared.Filter
	StudentID *uuid.UUID // Filter by student
	Status    *FeeStatus // Filter by status
	FeeType   *FeeType   // Filter by category
	DueFrom   *time.Time // Filter by due date range start
	DueTo     *time.Time // Filter by due date range end
	Overdue   *bool      // Filter only overdue fees
}

// FeeRepository defines the interface for fee persistence
type FeeRepository interface {
	// FindByID finds a fee by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Fee, error)

	// FindByIDForOwner finds a fee by ID scoped to an owning admin
	FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*Fee, error)

	// FindByStudent finds fees for a student with filtering
	FindByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID, filter FeeFilter) ([]Fee, error)

	// FindAllForOwner finds all fees for an owning admin with filtering
	FindAllForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter FeeFilter) ([]Fee, error)

	// FindOutstandingByStudent finds unsettled (pending or partially paid) fees for a student
	FindOutstandingByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID) ([]Fee, error)

	// Save creates or updates a fee
	Save(ctx context.Context, fee *Fee) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, fee *Fee) error

	// CountForOwner counts fees for an owning admin with optional filters
	CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter FeeFilter) (int64, error)

	// SumOutstandingByStudent calculates the total outstanding amount for a student
	SumOutstandingByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID) (decimal.Decimal, error)
}

// UnitOfWork commits related ledger writes in a single database
// transaction. Both saves carry optimistic-lock semantics; a version
// mismatch on either aborts the whole transaction.
type UnitOfWork interface {
	// SaveFeeAndPayment persists a fee mutation together with its payment
	SaveFeeAndPayment(ctx context.Context, fee *Fee, payment *Payment) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	StudentID *uuid.UUID     // Filter by student
	FeeID     *uuid.UUID     // Filter by fee
	Method    *PaymentMethod // Filter by method
	Status    *PaymentStatus // Filter by status
	FromDate  *time.Time     // Filter by creation date range start
	ToDate    *time.Time     // Filter by creation date range end
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForOwner finds a payment by ID scoped to an owning admin
	FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*Payment, error)

	// FindByTransactionID finds a payment by its transaction reference
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// FindByGatewayOrderID finds a payment by the gateway's order reference
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Payment, error)

	// FindByFee finds payments recorded against a fee
	FindByFee(ctx context.Context, ownerAdminID, feeID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// FindByStudent finds payments for a student with filtering
	FindByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// CountForOwner counts payments for an owning admin with optional filters
	CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter PaymentFilter) (int64, error)
}
