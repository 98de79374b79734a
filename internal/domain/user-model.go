package domain

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleApplicant  Role = "Applicant"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "Pending"
	UserStatusApproved UserStatus = "Approved"
	UserStatusRejected UserStatus = "Rejected"
)

// User is a portal identity. Committee members are users with the Admin or
// SuperAdmin role and only reach the dashboard once Approved. Email is unique
// among live rows only, so a deleted member's address can be reused.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex:idx_users_email_live,where:deleted_at IS NULL;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	DisplayName  string         `gorm:"type:varchar(150);not null" json:"display_name"`
	Role         Role           `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       UserStatus     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	ApprovedBy   *uint          `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time     `json:"approved_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsCommittee() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
