package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStudentRepository implements school.StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByID finds a student by ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOwner finds a student by ID scoped to an owning admin
func (r *GormStudentRepository) FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*school.Student, error) {
	var model models.StudentModel
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

// FindByUserID finds the student linked to a portal account
func (r *GormStudentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*school.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner finds all students for an owning admin with filtering
func (r *GormStudentRepository) FindAllForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter school.StudentFilter) ([]school.Student, error) {
	var studentModels []models.StudentModel
	query := r.db.WithContext(ctx).Model(&models.StudentModel{}).
		Where("owner_admin_id = ?", ownerAdminID)
	query = r.applyStudentFilter(query, filter)

	if err := query.Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]school.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// ExistsByMobileNo checks whether a mobile number is already enrolled for an owning admin
func (r *GormStudentRepository) ExistsByMobileNo(ctx context.Context, ownerAdminID uuid.UUID, mobileNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("owner_admin_id = ? AND mobile_no = ?", ownerAdminID, mobileNo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByStudentCode checks whether a student code is already taken for an owning admin
func (r *GormStudentRepository) ExistsByStudentCode(ctx context.Context, ownerAdminID uuid.UUID, studentCode string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("owner_admin_id = ? AND student_code = ?", ownerAdminID, studentCode).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, student *school.Student) error {
	model := models.StudentModelFromDomain(student)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		// Backstop for races past the service-level existence checks;
		// the unique indexes on student_code and mobile_no stay authoritative.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateResource
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. Uses a column map so that
// a false active flag is still written (struct updates skip zero values).
func (r *GormStudentRepository) SaveWithLock(ctx context.Context, student *school.Student) error {
	model := models.StudentModelFromDomain(student)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", student.ID, student.Version-1).
		Updates(map[string]interface{}{
			"student_code":   model.StudentCode,
			"name":           model.Name,
			"roll_no":        model.RollNo,
			"standard":       model.Standard,
			"mobile_no":      model.MobileNo,
			"guardian_name":  model.GuardianName,
			"active":         model.Active,
			"deactivated_at": model.DeactivatedAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForOwner counts students for an owning admin with optional filters
func (r *GormStudentRepository) CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter school.StudentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StudentModel{}).
		Where("owner_admin_id = ?", ownerAdminID)
	query = r.applyStudentFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyStudentFilter applies filter options including pagination and ordering
func (r *GormStudentRepository) applyStudentFilter(query *gorm.DB, filter school.StudentFilter) *gorm.DB {
	query = r.applyStudentFilterWithoutPagination(query, filter)

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
		query = query.Order("student_code ASC")
	}

	return query
}

// applyStudentFilterWithoutPagination applies filter options without pagination
func (r *GormStudentRepository) applyStudentFilterWithoutPagination(query *gorm.DB, filter school.StudentFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR student_code ILIKE ? OR mobile_no ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.Standard != nil {
		query = query.Where("standard = ?", *filter.Standard)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	return query
}

var _ school.StudentRepository = (*GormStudentRepository)(nil)
