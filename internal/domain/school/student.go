package school

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)

// Student is the enrollment record owned by a school admin. The linked
// user account (UserID) carries the portal credentials; deactivating
// the student deactivates the account as well.
type Student struct {
	shared.OwnedAggregateRoot
	StudentCode   string     `json:"student_code" gorm:"type:varchar(32);not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"type:varchar(200);not null"`
	RollNo        string     `json:"roll_no" gorm:"type:varchar(32);not null"`
	Standard      string     `json:"standard" gorm:"type:varchar(32);not null"`
	MobileNo      string     `json:"mobile_no" gorm:"type:varchar(16);not null"`
	GuardianName  string     `json:"guardian_name" gorm:"type:varchar(200)"`
	UserID        uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Active        bool       `json:"active" gorm:"not null;default:true"`
	DeactivatedAt *time.Time `json:"deactivated_at"`
}

// NewStudent creates a new enrolled student
func NewStudent(
	ownerAdminID uuid.UUID,
	studentCode string,
	name string,
	rollNo string,
	standard string,
	mobileNo string,
	guardianName string,
	userID uuid.UUID,
) (*Student, error) {
	if studentCode == "" {
		return nil, shared.NewDomainError("INVALID_STUDENT_CODE", "Student code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Student name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Student name cannot exceed 200 characters")
	}
	if rollNo == "" {
		return nil, shared.NewDomainError("INVALID_ROLL_NO", "Roll number cannot be empty")
	}
	if standard == "" {
		return nil, shared.NewDomainError("INVALID_STANDARD", "Standard cannot be empty")
	}
	if !mobileRegex.MatchString(mobileNo) {
		return nil, shared.NewDomainError("INVALID_MOBILE", "Mobile number must be 10 digits")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Linked user ID cannot be empty")
	}

	return &Student{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerAdminID),
		StudentCode:        studentCode,
		Name:               strings.TrimSpace(name),
		RollNo:             rollNo,
		Standard:           standard,
		MobileNo:           mobileNo,
		GuardianName:       strings.TrimSpace(guardianName),
		UserID:             userID,
		Active:             true,
	}, nil
}

// UpdateProfile updates the mutable profile fields
func (s *Student) UpdateProfile(name, rollNo, standard, mobileNo, guardianName string) error {
	if !s.Active {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a deactivated student")
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Student name cannot be empty")
	}
	if rollNo == "" {
		return shared.NewDomainError("INVALID_ROLL_NO", "Roll number cannot be empty")
	}
	if standard == "" {
		return shared.NewDomainError("INVALID_STANDARD", "Standard cannot be empty")
	}
	if !mobileRegex.MatchString(mobileNo) {
		return shared.NewDomainError("INVALID_MOBILE", "Mobile number must be 10 digits")
	}

	s.Name = strings.TrimSpace(name)
	s.RollNo = rollNo
	s.Standard = standard
	s.MobileNo = mobileNo
	s.GuardianName = strings.TrimSpace(guardianName)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Deactivate marks the student as no longer enrolled. Ledger history is
// kept; only new activity is blocked.
func (s *Student) Deactivate() error {
	if !s.Active {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Student is already deactivated")
	}

	now := time.Now()
	s.Active = false
	s.DeactivatedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	return nil
}

// Reactivate restores a deactivated student
func (s *Student) Reactivate() error {
	if s.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Student is already active")
	}

	s.Active = true
	s.DeactivatedAt = nil
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// GenerateStudentCode builds a display code from the standard and roll
// number, e.g. "STD8-042".
func GenerateStudentCode(standard, rollNo string) string {
	return fmt.Sprintf("STD%s-%s", strings.ToUpper(standard), rollNo)
}
