package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFeeRepository implements ledger.FeeRepository using GORM
type GormFeeRepository struct {
	db *gorm.DB
}

// NewGormFeeRepository creates a new GormFeeRepository
func NewGormFeeRepository(db *gorm.DB) *GormFeeRepository {
	return &GormFeeRepository{db: db}
}

// FindByID finds a fee by its ID
func (r *GormFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Fee, error) {
	var model models.FeeModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOwner finds a fee by ID scoped to an owning admin
func (r *GormFeeRepository) FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*ledger.Fee, error) {
	var model models.FeeModel
	if err := r.db.WithContext(ctx).
		Where("owner_admin_id = ? AND id = ?", ownerAdminID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds fees for a student with filtering
func (r *GormFeeRepository) FindByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID, filter ledger.FeeFilter) ([]ledger.Fee, error) {
	var feeModels []models.FeeModel
	query := r.db.WithContext(ctx).Model(&models.FeeModel{}).
		Where("owner_admin_id = ? AND student_id = ?", ownerAdminID, studentID)
	query = r.applyFeeFilter(query, filter)

	if err := query.Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]ledger.Fee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// FindAllForOwner finds all fees for an owning admin with filtering
func (r *GormFeeRepository) FindAllForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter ledger.FeeFilter) ([]ledger.Fee, error) {
	var feeModels []models.FeeModel
	query := r.db.WithContext(ctx).Model(&models.FeeModel{}).
		Where("owner_admin_id = ?", ownerAdminID)
	query = r.applyFeeFilter(query, filter)

	if err := query.Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]ledger.Fee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// FindOutstandingByStudent finds unsettled fees for a student, oldest first
func (r *GormFeeRepository) FindOutstandingByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID) ([]ledger.Fee, error) {
	var feeModels []models.FeeModel
	if err := r.db.WithContext(ctx).
		Where("owner_admin_id = ? AND student_id = ? AND status IN ?", ownerAdminID, studentID,
			[]ledger.FeeStatus{ledger.FeeStatusPending, ledger.FeeStatusPartiallyPaid}).
		Order("created_at ASC").
		Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]ledger.Fee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// Save creates or updates a fee
func (r *GormFeeRepository) Save(ctx context.Context, fee *ledger.Fee) error {
	model := models.FeeModelFromDomain(fee)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormFeeRepository) SaveWithLock(ctx context.Context, fee *ledger.Fee) error {
	model := models.FeeModelFromDomain(fee)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", fee.ID, fee.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForOwner counts fees for an owning admin with optional filters
func (r *GormFeeRepository) CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter ledger.FeeFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.FeeModel{}).
		Where("owner_admin_id = ?", ownerAdminID)
	query = r.applyFeeFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstandingByStudent calculates the total outstanding amount for a student
func (r *GormFeeRepository) SumOutstandingByStudent(ctx context.Context, ownerAdminID, studentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.FeeModel{}).
		Select("COALESCE(SUM(outstanding_amount), 0)").
		Where("owner_admin_id = ? AND student_id = ?", ownerAdminID, studentID).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// applyFeeFilter applies filter options including pagination and ordering
func (r *GormFeeRepository) applyFeeFilter(query *gorm.DB, filter ledger.FeeFilter) *gorm.DB {
	query = r.applyFeeFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFeeFilterWithoutPagination applies filter options without pagination
func (r *GormFeeRepository) applyFeeFilterWithoutPagination(query *gorm.DB, filter ledger.FeeFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ?", searchPattern)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FeeType != nil {
		query = query.Where("fee_type = ?", *filter.FeeType)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date < ? AND status IN ?", time.Now(),
			[]ledger.FeeStatus{ledger.FeeStatusPending, ledger.FeeStatusPartiallyPaid})
	}

	return query
}

var _ ledger.FeeRepository = (*GormFeeRepository)(nil)
