package models

import (
	"time"
)

// RoleStaff grants access to staff-gated fields such as a project's primary
// lab contact
const RoleStaff = "staff"

// User represents a user in the system
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Email    string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Name     string `json:"name,omitempty"`
	Role     string `gorm:"size:20;default:'user'" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports membership of the staff group
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}
