package persistence

import (
	"context"
	"errors"

	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAnnouncementRepository implements school.AnnouncementRepository using GORM
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewGormAnnouncementRepository creates a new GormAnnouncementRepository
func NewGormAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// FindByID finds an announcement by ID
func (r *GormAnnouncementRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Announcement, error) {
	var model models.AnnouncementModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOwner finds an announcement by ID scoped to an owning admin
func (r *GormAnnouncementRepository) FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*school.Announcement, error) {
	var model models.AnnouncementModel
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

// FindAllForOwner finds all announcements for an owning admin, newest first
func (r *GormAnnouncementRepository) FindAllForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter shared.Filter) ([]school.Announcement, error) {
	var announcementModels []models.AnnouncementModel
	query := r.db.WithContext(ctx).Model(&models.AnnouncementModel{}).
		Where("owner_admin_id = ?", ownerAdminID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&announcementModels).Error; err != nil {
		return nil, err
	}
	announcements := make([]school.Announcement, len(announcementModels))
	for i, model := range announcementModels {
		announcements[i] = *model.ToDomain()
	}
	return announcements, nil
}

// FindVisibleToStandard finds announcements a student of the given standard can see:
// school-wide ones plus those targeted at the student's standard.
func (r *GormAnnouncementRepository) FindVisibleToStandard(ctx context.Context, ownerAdminID uuid.UUID, standard string, filter shared.Filter) ([]school.Announcement, error) {
	var announcementModels []models.AnnouncementModel
	query := r.db.WithContext(ctx).Model(&models.AnnouncementModel{}).
		Where("owner_admin_id = ? AND (audience = ? OR (audience = ? AND standard = ?))",
			ownerAdminID, school.AudienceAll, school.AudienceStandard, standard)
	query = r.applyFilter(query, filter)

	if err := query.Find(&announcementModels).Error; err != nil {
		return nil, err
	}
	announcements := make([]school.Announcement, len(announcementModels))
	for i, model := range announcementModels {
		announcements[i] = *model.ToDomain()
	}
	return announcements, nil
}

// Save creates or updates an announcement
func (r *GormAnnouncementRepository) Save(ctx context.Context, announcement *school.Announcement) error {
	model := models.AnnouncementModelFromDomain(announcement)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an announcement for an owning admin
func (r *GormAnnouncementRepository) Delete(ctx context.Context, ownerAdminID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.AnnouncementModel{}, "owner_admin_id = ? AND id = ?", ownerAdminID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies pagination and ordering, newest posting first by default
func (r *GormAnnouncementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR body ILIKE ?", searchPattern, searchPattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query.Order("posted_at DESC")
}

var _ school.AnnouncementRepository = (*GormAnnouncementRepository)(nil)
