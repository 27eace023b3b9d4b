package school

import (
	"time"

	"github.com/edupay/backend/internal/domain/school"
	"github.com/google/uuid"
)

// OnboardStudentRequest represents a request to enroll a new student
type OnboardStudentRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	RollNo       string `json:"roll_no" binding:"required,max=20"`
	Standard     string `json:"standard" binding:"required,max=32"`
	MobileNo     string `json:"mobile_no" binding:"required,len=10,numeric"`
	GuardianName string `json:"guardian_name" binding:"max=100"`
}

// UpdateStudentRequest represents a profile update
type UpdateStudentRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	RollNo       string `json:"roll_no" binding:"required,max=20"`
	Standard     string `json:"standard" binding:"required,max=32"`
	MobileNo     string `json:"mobile_no" binding:"required,len=10,numeric"`
	GuardianName string `json:"guardian_name" binding:"max=100"`
}

// StudentResponse represents a student in API responses
type StudentResponse struct {
	ID            uuid.UUID  `json:"id"`
	StudentCode   string     `json:"student_code"`
	Name          string     `json:"name"`
	RollNo        string     `json:"roll_no"`
	Standard      string     `json:"standard"`
	MobileNo      string     `json:"mobile_no"`
	GuardianName  string     `json:"guardian_name"`
	Active        bool       `json:"active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToStudentResponse maps a student aggregate to its response representation
func ToStudentResponse(s *school.Student) StudentResponse {
	return StudentResponse{
		ID:            s.ID,
		StudentCode:   s.StudentCode,
		Name:          s.Name,
		RollNo:        s.RollNo,
		Standard:      s.Standard,
		MobileNo:      s.MobileNo,
		GuardianName:  s.GuardianName,
		Active:        s.Active,
		DeactivatedAt: s.DeactivatedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToStudentResponses maps a slice of students
func ToStudentResponses(students []school.Student) []StudentResponse {
	out := make([]StudentResponse, len(students))
	for i := range students {
		out[i] = ToStudentResponse(&students[i])
	}
	return out
}

// OnboardStudentResponse carries the enrolled student along with the
// portal credentials. The temporary password is returned exactly once
// and is never persisted in cleartext.
type OnboardStudentResponse struct {
	Student           StudentResponse `json:"student"`
	Username          string          `json:"username"`
	TemporaryPassword string          `json:"temporary_password"`
}

// StudentListFilter represents filter options for student listings
type StudentListFilter struct {
	Standard string `form:"standard" binding:"omitempty,max=32"`
	Active   *bool  `form:"active"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PostAnnouncementRequest represents a request to publish a notice
type PostAnnouncementRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Body     string `json:"body" binding:"required"`
	Audience string `json:"audience" binding:"required,oneof=ALL STANDARD"`
	Standard string `json:"standard" binding:"omitempty,max=32"`
}

// AnnouncementResponse represents an announcement in API responses
type AnnouncementResponse struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Audience string    `json:"audience"`
	Standard string    `json:"standard,omitempty"`
	PostedAt time.Time `json:"posted_at"`
}

// ToAnnouncementResponse maps an announcement to its response representation
func ToAnnouncementResponse(a *school.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:       a.ID,
		Title:    a.Title,
		Body:     a.Body,
		Audience: string(a.Audience),
		Standard: a.Standard,
		PostedAt: a.PostedAt,
	}
}

// ToAnnouncementResponses maps a slice of announcements
func ToAnnouncementResponses(list []school.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, len(list))
	for i := range list {
		out[i] = ToAnnouncementResponse(&list[i])
	}
	return out
}
