package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Application status constants. The transition engine is parameterized over
// the graph, these are only the canonical labels the default graph uses.
const (
	ApplicationStatusPending       = "pending"
	ApplicationStatusInterviews    = "interviews"
	ApplicationStatusAccepted      = "accepted"
	ApplicationStatusRejected      = "rejected"
	ApplicationStatusOfferAccepted = "offer-accepted"
	ApplicationStatusOfferRejected = "offer-rejected"
)

// InterviewDetail is one scheduled interview, stored ordered inside the
// application's interview_details JSON column.
type InterviewDetail struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

type Application struct {
	ID          uuid.UUID `gorm:"primaryKey;"`
	JobID       uuid.UUID `gorm:"index;uniqueIndex:applications_job_id_applicant_id"`
	ApplicantID uuid.UUID `gorm:"index;uniqueIndex:applications_job_id_applicant_id"`

	Status string `gorm:"index;not null;default:pending"`

	// Orthogonal annotations, not states.
	Rating *int
	Notes  string

	InterviewDetails []byte `gorm:"type:jsonb"`

	CVRef       string
	CoverLetter string

	// Set by the cascade resolver when the referenced job is deleted. The
	// job id is retained for display.
	Orphaned bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ApplicationList []Application

func (a Application) String() string {
	val, _ := json.Marshal(a)
	return string(val)
}

func (a *Application) Interviews() ([]InterviewDetail, error) {
	if len(a.InterviewDetails) == 0 {
		return nil, nil
	}
	var details []InterviewDetail
	if err := json.Unmarshal(a.InterviewDetails, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func ApplicationStatuses() []string {
	return []string{
		ApplicationStatusPending,
		ApplicationStatusInterviews,
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
		ApplicationStatusOfferAccepted,
		ApplicationStatusOfferRejected,
	}
}
