package model

import (
	"time"

	"github.com/google/uuid"
)

// Role constants. Roles are fixed at creation.
const (
	RoleJobSeeker = "jobseeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Account status constants
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusBanned   = "banned"
)

type User struct {
	ID            uuid.UUID `gorm:"primaryKey;"`
	Role          string    `gorm:"index;not null"`
	AccountStatus string    `gorm:"index;not null;default:active"`
	Name          string    `gorm:"not null"`
	Email         string    `gorm:"uniqueIndex;not null"`
	Company       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserList []User

func AccountStatuses() []string {
	return []string{AccountStatusActive, AccountStatusInactive, AccountStatusBanned}
}
