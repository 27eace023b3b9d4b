package school

import (
	"strings"
	"time"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AnnouncementAudience restricts who can see an announcement
type AnnouncementAudience string

const (
	AudienceAll      AnnouncementAudience = "ALL"      // Every student of the school
	AudienceStandard AnnouncementAudience = "STANDARD" // Students of one standard
)

// IsValid checks if the audience is valid
func (a AnnouncementAudience) IsValid() bool {
	return a == AudienceAll || a == AudienceStandard
}

// Announcement is a notice published by the school admin to the
// student portal.
type Announcement struct {
	shared.OwnedAggregateRoot
	Title    string               `json:"title" gorm:"type:varchar(200);not null"`
	Body     string               `json:"body" gorm:"type:text;not null"`
	Audience AnnouncementAudience `json:"audience" gorm:"type:varchar(16);not null"`
	Standard string               `json:"standard" gorm:"type:varchar(32)"`
	PostedAt time.Time            `json:"posted_at" gorm:"not null"`
}

// NewAnnouncement creates a new announcement
func NewAnnouncement(ownerAdminID uuid.UUID, title, body string, audience AnnouncementAudience, standard string) (*Announcement, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	if strings.TrimSpace(body) == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Body cannot be empty")
	}
	if !audience.IsValid() {
		return nil, shared.NewDomainError("INVALID_AUDIENCE", "Audience is not valid")
	}
	if audience == AudienceStandard && standard == "" {
		return nil, shared.NewDomainError("INVALID_STANDARD", "Standard is required for a standard-scoped announcement")
	}

	return &Announcement{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerAdminID),
		Title:              strings.TrimSpace(title),
		Body:               body,
		Audience:           audience,
		Standard:           standard,
		PostedAt:           time.Now(),
	}, nil
}

// VisibleTo reports whether a student of the given standard can see
// this announcement.
func (a *Announcement) VisibleTo(standard string) bool {
	if a.Audience == AudienceAll {
		return true
	}
	return a.Standard == standard
}
