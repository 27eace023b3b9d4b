package models

import (
	"time"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeModel is the persistence model for the Fee aggregate root.
type FeeModel struct {
	OwnedAggregateModel
	StudentID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	FeeType           ledger.FeeType   `gorm:"type:varchar(32);not null;index"`
	Description       string           `gorm:"type:varchar(255)"`
	Amount            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	AmountPaid        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	OutstandingAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null;index"`
	Status            ledger.FeeStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DueDate           *time.Time       `gorm:"index"`
	PaidAt            *time.Time
}

// TableName returns the table name for GORM
func (FeeModel) TableName() string {
	return "fees"
}

// ToDomain converts the persistence model to a domain Fee entity.
func (m *FeeModel) ToDomain() *ledger.Fee {
	fee := &ledger.Fee{
		StudentID:         m.StudentID,
		FeeType:           m.FeeType,
		Description:       m.Description,
		Amount:            m.Amount,
		AmountPaid:        m.AmountPaid,
		OutstandingAmount: m.OutstandingAmount,
		Status:            m.Status,
		DueDate:           m.DueDate,
		PaidAt:            m.PaidAt,
	}
	m.PopulateOwnedAggregateRoot(&fee.OwnedAggregateRoot)
	return fee
}

// FromDomain populates the persistence model from a domain Fee entity.
func (m *FeeModel) FromDomain(fee *ledger.Fee) {
	m.FromDomainOwnedAggregateRoot(fee.OwnedAggregateRoot)
	m.StudentID = fee.StudentID
	m.FeeType = fee.FeeType
	m.Description = fee.Description
	m.Amount = fee.Amount
	m.AmountPaid = fee.AmountPaid
	m.OutstandingAmount = fee.OutstandingAmount
	m.Status = fee.Status
	m.DueDate = fee.DueDate
	m.PaidAt = fee.PaidAt
}

// FeeModelFromDomain creates a new persistence model from a domain Fee.
func FeeModelFromDomain(fee *ledger.Fee) *FeeModel {
	m := &FeeModel{}
	m.FromDomain(fee)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// The partial unique index on gateway_order_id backs callback idempotency:
// the database refuses a second payment for the same gateway order even
// when the fast-path cache missed.
type PaymentModel struct {
	OwnedAggregateModel
	TransactionID    string               `gorm:"type:varchar(64);not null;uniqueIndex"`
	FeeID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	StudentID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Method           ledger.PaymentMethod `gorm:"type:varchar(16);not null;index"`
	Status           ledger.PaymentStatus `gorm:"type:varchar(16);not null;index"`
	GatewayOrderID   string               `gorm:"type:varchar(64);uniqueIndex:idx_payments_gateway_order,where:gateway_order_id <> ''"`
	GatewayPaymentID string               `gorm:"type:varchar(64)"`
	FailureReason    string               `gorm:"type:varchar(255)"`
	RecordedByUserID uuid.UUID            `gorm:"type:uuid;not null"`
	SettledAt        *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	payment := &ledger.Payment{
		TransactionID:    m.TransactionID,
		FeeID:            m.FeeID,
		StudentID:        m.StudentID,
		Amount:           m.Amount,
		Method:           m.Method,
		Status:           m.Status,
		GatewayOrderID:   m.GatewayOrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		FailureReason:    m.FailureReason,
		RecordedByUserID: m.RecordedByUserID,
		SettledAt:        m.SettledAt,
	}
	m.PopulateOwnedAggregateRoot(&payment.OwnedAggregateRoot)
	return payment
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(payment *ledger.Payment) {
	m.FromDomainOwnedAggregateRoot(payment.OwnedAggregateRoot)
	m.TransactionID = payment.TransactionID
	m.FeeID = payment.FeeID
	m.StudentID = payment.StudentID
	m.Amount = payment.Amount
	m.Method = payment.Method
	m.Status = payment.Status
	m.GatewayOrderID = payment.GatewayOrderID
	m.GatewayPaymentID = payment.GatewayPaymentID
	m.FailureReason = payment.FailureReason
	m.RecordedByUserID = payment.RecordedByUserID
	m.SettledAt = payment.SettledAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(payment *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(payment)
	return m
}
