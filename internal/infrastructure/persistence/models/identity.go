package models

import (
	"time"

	"github.com/edupay/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username           string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash       string              `gorm:"type:varchar(100);not null"`
	Role               identity.Role       `gorm:"type:varchar(16);not null;index"`
	Status             identity.UserStatus `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	MustChangePassword bool                `gorm:"not null;default:false"`
	PasswordChangedAt  *time.Time
	LastLoginAt        *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		Username:           m.Username,
		PasswordHash:       m.PasswordHash,
		Role:               m.Role,
		Status:             m.Status,
		MustChangePassword: m.MustChangePassword,
		PasswordChangedAt:  m.PasswordChangedAt,
		LastLoginAt:        m.LastLoginAt,
	}
	m.PopulateAggregateRoot(&user.BaseAggregateRoot)
	return user
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Status = u.Status
	m.MustChangePassword = u.MustChangePassword
	m.PasswordChangedAt = u.PasswordChangedAt
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
