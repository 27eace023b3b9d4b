package school

import (
	"context"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StudentFilter defines filtering options for student queries
type StudentFilter struct {
	shared.Filter
	Standard *string // Filter by standard
	Active   *bool   // Filter by enrollment state
}

// StudentRepository defines the interface for student persistence
type StudentRepository interface {
	// FindByID finds a student by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)

	// FindByIDForOwner finds a student by ID scoped to an owning admin
	FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*Student, error)

	// FindByUserID finds the student linked to a portal account
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Student, error)

	// FindAllForOwner finds all students for an owning admin with filtering
	FindAllForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter StudentFilter) ([]Student, error)

	// ExistsByMobileNo checks whether a mobile number is already enrolled for an owning admin
	ExistsByMobileNo(ctx context.Context, ownerAdminID uuid.UUID, mobileNo string) (bool, error)

	// ExistsByStudentCode checks whether a student code is already taken for an owning admin
	ExistsByStudentCode(ctx context.Context, ownerAdminID uuid.UUID, studentCode string) (bool, error)

	// Save creates or updates a student
	Save(ctx context.Context, student *Student) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, student *Student) error

	// CountForOwner counts students for an owning admin with optional filters
	CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter StudentFilter) (int64, error)
}

// AnnouncementRepository defines the interface for announcement persistence
type AnnouncementRepository interface {
	// FindByID finds an announcement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Announcement, error)

	// FindByIDForOwner finds an announcement by ID scoped to an owning admin
	FindByIDForOwner(ctx context.Context, ownerAdminID, id uuid.UUID) (*Announcement, error)

	// FindAllForOwner finds all announcements for an owning admin, newest first
	FindAllForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter shared.Filter) ([]Announcement, error)

	// FindVisibleToStandard finds announcements a student of the given standard can see
	FindVisibleToStandard(ctx context.Context, ownerAdminID uuid.UUID, standard string, filter shared.Filter) ([]Announcement, error)

	// Save creates or updates an announcement
	Save(ctx context.Context, announcement *Announcement) error

	// Delete removes an announcement
	Delete(ctx context.Context, ownerAdminID, id uuid.UUID) error
}
