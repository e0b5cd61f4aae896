package models

import (
	"time"
)

// Gender of a user
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Role is the single role label a user carries
type Role string

const (
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
)

// RoleFor returns the role matching the trainer flag
func RoleFor(isTrainer bool) Role {
	if isTrainer {
		return RoleTrainer
	}
	return RoleMember
}

// User represents a user in the system
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name            string     `gorm:"type:varchar(255);not null" json:"name"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"type:varchar(255)" json:"-"`
	Phone           string     `gorm:"type:varchar(20)" json:"phone"`
	Gender          Gender     `gorm:"type:varchar(10)" json:"gender"`
	IsTrainer       bool       `gorm:"not null" json:"is_trainer"`
	Role            Role       `gorm:"type:varchar(20);index" json:"role"`
	IsAdmin         bool       `gorm:"not null" json:"is_admin"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
}

// HasRole reports whether the user currently carries role
func (u User) HasRole(role Role) bool {
	return u.Role == role
}
