package ledger

import (
	"fmt"
	"time"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeStatus represents the payment status of a fee
type FeeStatus string

const (
	FeeStatusPending       FeeStatus = "PENDING"        // Nothing paid yet, outstanding = amount
	FeeStatusPartiallyPaid FeeStatus = "PARTIALLY_PAID" // 0 < paid < amount
	FeeStatusPaid          FeeStatus = "PAID"           // Fully settled, outstanding = 0
)

// IsValid checks if the status is a valid FeeStatus
func (s FeeStatus) IsValid() bool {
	switch s {
	case FeeStatusPending, FeeStatusPartiallyPaid, FeeStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of FeeStatus
func (s FeeStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if payments can be applied in this status
func (s FeeStatus) CanApplyPayment() bool {
	return s == FeeStatusPending || s == FeeStatusPartiallyPaid
}

// FeeType categorizes what the fee is charged for
type FeeType string

const (
	FeeTypeTuition       FeeType = "TUITION"
	FeeTypeExamination   FeeType = "EXAMINATION"
	FeeTypeTransport     FeeType = "TRANSPORT"
	FeeTypeLibrary       FeeType = "LIBRARY"
	FeeTypeMiscellaneous FeeType = "MISCELLANEOUS"
)

// IsValid checks if the fee type is valid
func (t FeeType) IsValid() bool {
	switch t {
	case FeeTypeTuition, FeeTypeExamination, FeeTypeTransport, FeeTypeLibrary, FeeTypeMiscellaneous:
		return true
	}
	return false
}

// Fee is the ledger aggregate for a single charge against a student.
// The invariant amount = paid + outstanding holds after every mutation;
// status is always derived from paid relative to amount.
type Fee struct {
	shared.OwnedAggregateRoot
	StudentID         uuid.UUID       `json:"student_id" gorm:"type:uuid;not null;index"`
	FeeType           FeeType         `json:"fee_type" gorm:"type:varchar(32);not null"`
	Description       string          `json:"description" gorm:"type:varchar(255)"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	AmountPaid        decimal.Decimal `json:"amount_paid" gorm:"type:decimal(12,2);not null"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount" gorm:"type:decimal(12,2);not null"`
	Status            FeeStatus       `json:"status" gorm:"type:varchar(20);not null;index"`
	DueDate           *time.Time      `json:"due_date"`
	PaidAt            *time.Time      `json:"paid_at"`
}

// NewFee creates a new fee charge against a student
func NewFee(
	ownerAdminID uuid.UUID,
	studentID uuid.UUID,
	feeType FeeType,
	description string,
	amount valueobject.Money,
	dueDate *time.Time,
) (*Fee, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if !feeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEE_TYPE", "Fee type is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fee amount must be positive")
	}

	return &Fee{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerAdminID),
		StudentID:          studentID,
		FeeType:            feeType,
		Description:        description,
		Amount:             amount.Amount(),
		AmountPaid:         decimal.Zero,
		OutstandingAmount:  amount.Amount(),
		Status:             FeeStatusPending,
		DueDate:            dueDate,
	}, nil
}

// ApplyPayment credits a settled payment against the fee.
// Returns error if the amount is non-positive, exceeds the outstanding
// balance, or the fee is already fully paid.
func (f *Fee) ApplyPayment(amount valueobject.Money) error {
	if !f.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to fee in %s status", f.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(f.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", fmt.Sprintf("Payment amount %.2f exceeds outstanding amount %.2f", amount.Amount().InexactFloat64(), f.OutstandingAmount.InexactFloat64()))
	}

	f.AmountPaid = f.AmountPaid.Add(amount.Amount())
	f.OutstandingAmount = f.Amount.Sub(f.AmountPaid)

	if f.OutstandingAmount.IsZero() {
		now := time.Now()
		f.Status = FeeStatusPaid
		f.PaidAt = &now
	} else {
		f.Status = FeeStatusPartiallyPaid
	}

	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetDueDate updates the due date
func (f *Fee) SetDueDate(dueDate *time.Time) error {
	if f.Status == FeeStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify due date of a fully paid fee")
	}

	f.DueDate = dueDate
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// GetAmountMoney returns the charged amount as Money
func (f *Fee) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(f.Amount)
}

// GetAmountPaidMoney returns the paid amount as Money
func (f *Fee) GetAmountPaidMoney() valueobject.Money {
	return valueobject.NewMoney(f.AmountPaid)
}

// GetOutstandingMoney returns the outstanding balance as Money
func (f *Fee) GetOutstandingMoney() valueobject.Money {
	return valueobject.NewMoney(f.OutstandingAmount)
}

// IsPaid returns true if the fee is fully settled
func (f *Fee) IsPaid() bool {
	return f.Status == FeeStatusPaid
}

// IsOverdue returns true if the fee is past due date and not fully paid
func (f *Fee) IsOverdue() bool {
	if f.Status == FeeStatusPaid {
		return false
	}
	if f.DueDate == nil {
		return false
	}
	return time.Now().After(*f.DueDate)
}

// PaidPercentage returns the percentage of total that has been paid (0-100)
func (f *Fee) PaidPercentage() decimal.Decimal {
	if f.Amount.IsZero() {
		return decimal.NewFromInt(100)
	}
	return f.AmountPaid.Div(f.Amount).Mul(decimal.NewFromInt(100)).Round(2)
}
