package models

import (
	"time"

	"github.com/edupay/backend/internal/domain/school"
	"github.com/google/uuid"
)

// StudentModel is the persistence model for the Student aggregate root.
type StudentModel struct {
	OwnedAggregateModel
	StudentCode   string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_students_owner_code,priority:2"`
	Name          string     `gorm:"type:varchar(200);not null"`
	RollNo        string     `gorm:"type:varchar(32);not null"`
	Standard      string     `gorm:"type:varchar(32);not null;index"`
	MobileNo      string     `gorm:"type:varchar(16);not null;uniqueIndex:idx_students_owner_mobile,priority:2"`
	GuardianName  string     `gorm:"type:varchar(200)"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Active        bool       `gorm:"not null;default:true;index"`
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *school.Student {
	student := &school.Student{
		StudentCode:   m.StudentCode,
		Name:          m.Name,
		RollNo:        m.RollNo,
		Standard:      m.Standard,
		MobileNo:      m.MobileNo,
		GuardianName:  m.GuardianName,
		UserID:        m.UserID,
		Active:        m.Active,
		DeactivatedAt: m.DeactivatedAt,
	}
	m.PopulateOwnedAggregateRoot(&student.OwnedAggregateRoot)
	return student
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(student *school.Student) {
	m.FromDomainOwnedAggregateRoot(student.OwnedAggregateRoot)
	m.StudentCode = student.StudentCode
	m.Name = student.Name
	m.RollNo = student.RollNo
	m.Standard = student.Standard
	m.MobileNo = student.MobileNo
	m.GuardianName = student.GuardianName
	m.UserID = student.UserID
	m.Active = student.Active
	m.DeactivatedAt = student.DeactivatedAt
}

// StudentModelFromDomain creates a new persistence model from a domain Student.
func StudentModelFromDomain(student *school.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(student)
	return m
}

// AnnouncementModel is the persistence model for the Announcement aggregate root.
type AnnouncementModel struct {
	OwnedAggregateModel
	Title    string                      `gorm:"type:varchar(200);not null"`
	Body     string                      `gorm:"type:text;not null"`
	Audience school.AnnouncementAudience `gorm:"type:varchar(16);not null;index"`
	Standard string                      `gorm:"type:varchar(32)"`
	PostedAt time.Time                   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AnnouncementModel) TableName() string {
	return "announcements"
}

// ToDomain converts the persistence model to a domain Announcement entity.
func (m *AnnouncementModel) ToDomain() *school.Announcement {
	announcement := &school.Announcement{
		Title:    m.Title,
		Body:     m.Body,
		Audience: m.Audience,
		Standard: m.Standard,
		PostedAt: m.PostedAt,
	}
	m.PopulateOwnedAggregateRoot(&announcement.OwnedAggregateRoot)
	return announcement
}

// FromDomain populates the persistence model from a domain Announcement entity.
func (m *AnnouncementModel) FromDomain(announcement *school.Announcement) {
	m.FromDomainOwnedAggregateRoot(announcement.OwnedAggregateRoot)
	m.Title = announcement.Title
	m.Body = announcement.Body
	m.Audience = announcement.Audience
	m.Standard = announcement.Standard
	m.PostedAt = announcement.PostedAt
}

// AnnouncementModelFromDomain creates a new persistence model from a domain Announcement.
func AnnouncementModelFromDomain(announcement *school.Announcement) *AnnouncementModel {
	m := &AnnouncementModel{}
	m.FromDomain(announcement)
	return m
}
