package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusDraft    = "draft"
	JobStatusPending  = "pending"
	JobStatusActive   = "active"
	JobStatusClosed   = "closed"
	JobStatusRejected = "rejected"
)

// Working type constants
const (
	WorkingTypeFullTime = "full-time"
	WorkingTypePartTime = "part-time"
	WorkingTypeContract = "contract"
	WorkingTypeRemote   = "remote"
)

type Job struct {
	ID          uuid.UUID `gorm:"primaryKey;"`
	OwnerID     uuid.UUID `gorm:"index;not null"`
	Title       string    `gorm:"not null"`
	Company     string
	Description string
	Category    string `gorm:"index"`
	Sector      string
	WorkingType string `gorm:"index"`
	Location    string
	SalaryMin   int64
	SalaryMax   int64
	Featured    bool
	Urgent      bool

	Status          string `gorm:"index;not null;default:draft"`
	RejectionReason string

	// Denormalized counters, moved only by view and apply/withdraw events.
	ViewCount        int64 `gorm:"not null;default:0"`
	ApplicationCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

func JobStatuses() []string {
	return []string{JobStatusDraft, JobStatusPending, JobStatusActive, JobStatusClosed, JobStatusRejected}
}
