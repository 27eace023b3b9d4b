package school

import (
	"context"

	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnnouncementService handles notices published by the school admin
// to the student portal.
type AnnouncementService struct {
	announcementRepo school.AnnouncementRepository
	studentRepo      school.StudentRepository
	log              *zap.Logger
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(
	announcementRepo school.AnnouncementRepository,
	studentRepo school.StudentRepository,
	log *zap.Logger,
) *AnnouncementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		studentRepo:      studentRepo,
		log:              log,
	}
}

// PostAnnouncement publishes a notice to the whole school or to one standard
func (s *AnnouncementService) PostAnnouncement(ctx context.Context, req PostAnnouncementRequest, ownerAdminID uuid.UUID) (*AnnouncementResponse, error) {
	announcement, err := school.NewAnnouncement(
		ownerAdminID,
		req.Title,
		req.Body,
		school.AnnouncementAudience(req.Audience),
		req.Standard,
	)
	if err != nil {
		return nil, err
	}

	if err := s.announcementRepo.Save(ctx, announcement); err != nil {
		return nil, err
	}

	s.log.Info("Announcement posted",
		zap.String("announcement_id", announcement.ID.String()),
		zap.String("audience", string(announcement.Audience)))

	response := ToAnnouncementResponse(announcement)
	return &response, nil
}

// ListAnnouncements lists all announcements for the owning admin, newest first
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, ownerAdminID uuid.UUID) ([]AnnouncementResponse, error) {
	list, err := s.announcementRepo.FindAllForOwner(ctx, ownerAdminID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToAnnouncementResponses(list), nil
}

// ListVisibleToStudent lists the announcements a portal account can
// see: school-wide notices plus those scoped to the student's standard.
func (s *AnnouncementService) ListVisibleToStudent(ctx context.Context, userID uuid.UUID) ([]AnnouncementResponse, error) {
	student, err := s.studentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.ErrNotFound
	}

	list, err := s.announcementRepo.FindVisibleToStandard(ctx, student.OwnerAdminID, student.Standard, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToAnnouncementResponses(list), nil
}

// DeleteAnnouncement removes a notice
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, announcementID, ownerAdminID uuid.UUID) error {
	existing, err := s.announcementRepo.FindByIDForOwner(ctx, ownerAdminID, announcementID)
	if err != nil {
		return err
	}
	if existing == nil {
		return shared.ErrNotFound
	}
	return s.announcementRepo.Delete(ctx, ownerAdminID, announcementID)
}
