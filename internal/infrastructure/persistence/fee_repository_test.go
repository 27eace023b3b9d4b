package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM DB backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockFeeRepository(t *testing.T) (*GormFeeRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormFeeRepository(gormDB), mock, mockDB
}

func feeColumns() []string {
	return []string{"id", "created_at", "updated_at", "version", "owner_admin_id",
		"student_id", "fee_type", "description", "amount", "amount_paid",
		"outstanding_amount", "status", "due_date", "paid_at"}
}

func TestGormFeeRepository_FindByIDForOwner(t *testing.T) {
	t.Run("finds fee within owning admin scope", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeRepository(t)
		defer mockDB.Close()

		feeID := uuid.New()
		ownerID := uuid.New()
		studentID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(feeColumns()).
			AddRow(feeID, now, now, 1, ownerID, studentID, "TUITION", "Term 1 tuition",
				decimal.NewFromInt(5000), decimal.Zero, decimal.NewFromInt(5000), "PENDING", nil, nil)

		mock.ExpectQuery(`SELECT \* FROM "fees" WHERE owner_admin_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(ownerID, feeID, 1).
			WillReturnRows(rows)

		fee, err := repo.FindByIDForOwner(context.Background(), ownerID, feeID)

		assert.NoError(t, err)
		require.NotNil(t, fee)
		assert.Equal(t, feeID, fee.ID)
		assert.Equal(t, ownerID, fee.OwnerAdminID)
		assert.Equal(t, ledger.FeeStatusPending, fee.Status)
		assert.True(t, fee.OutstandingAmount.Equal(decimal.NewFromInt(5000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for fee of another admin", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeRepository(t)
		defer mockDB.Close()

		feeID := uuid.New()
		ownerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fees" WHERE owner_admin_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(ownerID, feeID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		fee, err := repo.FindByIDForOwner(context.Background(), ownerID, feeID)

		assert.NoError(t, err)
		assert.Nil(t, fee)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeRepository_SaveWithLock(t *testing.T) {
	newVersionedFee := func() *ledger.Fee {
		fee := &ledger.Fee{
			OwnedAggregateRoot: shared.NewOwnedAggregateRoot(uuid.New()),
			StudentID:          uuid.New(),
			FeeType:            ledger.FeeTypeTuition,
			Amount:             decimal.NewFromInt(5000),
			AmountPaid:         decimal.NewFromInt(2000),
			OutstandingAmount:  decimal.NewFromInt(3000),
			Status:             ledger.FeeStatusPartiallyPaid,
		}
		fee.Version = 2
		return fee
	}

	t.Run("updates row matching previous version", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeRepository(t)
		defer mockDB.Close()

		fee := newVersionedFee()

		mock.ExpectExec(`UPDATE "fees" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), fee)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports conflict when version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeRepository(t)
		defer mockDB.Close()

		fee := newVersionedFee()

		mock.ExpectExec(`UPDATE "fees" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), fee)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeRepository_SumOutstandingByStudent(t *testing.T) {
	t.Run("sums outstanding amounts", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		studentID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(outstanding_amount\), 0\) FROM "fees" WHERE owner_admin_id = \$1 AND student_id = \$2`).
			WithArgs(ownerID, studentID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("3500.00"))

		total, err := repo.SumOutstandingByStudent(context.Background(), ownerID, studentID)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(3500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
