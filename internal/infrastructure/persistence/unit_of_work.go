package persistence

import (
	"context"

	"github.com/edupay/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormUnitOfWork implements ledger.UnitOfWork using GORM transactions.
// A fee mutation and its payment record always land together or not at
// all; the fee write carries the optimistic-lock version check, so a
// concurrent balance update rolls back the payment as well.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// SaveFeeAndPayment persists a fee mutation together with its payment
// in a single database transaction.
func (u *GormUnitOfWork) SaveFeeAndPayment(ctx context.Context, fee *ledger.Fee, payment *ledger.Payment) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		feeRepo := NewGormFeeRepository(tx)
		if err := feeRepo.SaveWithLock(ctx, fee); err != nil {
			return err
		}
		paymentRepo := NewGormPaymentRepository(tx)
		return paymentRepo.Save(ctx, payment)
	})
}

// Ensure GormUnitOfWork implements ledger.UnitOfWork
var _ ledger.UnitOfWork = (*GormUnitOfWork)(nil)
