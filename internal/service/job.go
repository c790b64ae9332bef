package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
)

type JobService struct {
	store   store.Store
	cascade *CascadeService
}

func NewJobService(store store.Store, cascade *CascadeService) *JobService {
	return &JobService{store: store, cascade: cascade}
}

type JobCreateForm struct {
	Title       string
	Company     string
	Description string
	Category    string
	Sector      string
	WorkingType string
	Location    string
	SalaryMin   int64
	SalaryMax   int64
	Featured    bool
	Urgent      bool
	// Submit sends the job straight to the moderation queue instead of
	// leaving it in draft.
	Submit bool
}

func (s *JobService) CreateJob(ctx context.Context, form JobCreateForm, actor auth.Actor) (*model.Job, error) {
	if !actor.IsEmployer() {
		return nil, NewErrForbidden("only employers can post jobs")
	}

	status := model.JobStatusDraft
	if form.Submit {
		status = model.JobStatusPending
	}

	job, err := s.store.Job().Create(ctx, model.Job{
		ID:          uuid.New(),
		OwnerID:     actor.ID,
		Title:       form.Title,
		Company:     form.Company,
		Description: form.Description,
		Category:    form.Category,
		Sector:      form.Sector,
		WorkingType: form.WorkingType,
		Location:    form.Location,
		SalaryMin:   form.SalaryMin,
		SalaryMax:   form.SalaryMax,
		Featured:    form.Featured,
		Urgent:      form.Urgent,
		Status:      status,
	})
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}
	return job, nil
}

// RecordView bumps the job's view counter with a store-level atomic
// increment, concurrent viewers never lose updates.
func (s *JobService) RecordView(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Job().Increment(ctx, id, store.JobCounterViews, 1); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrJobNotFound(id)
		}
		return NewErrStoreUnavailable(err)
	}
	return nil
}

// DeleteJob is the hard terminal event: the owning employer or an admin
// removes the job and the cascade resolver orphans its applications.
func (s *JobService) DeleteJob(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrJobNotFound(id)
		}
		return NewErrStoreUnavailable(err)
	}

	if !actor.IsAdmin() && job.OwnerID != actor.ID {
		return NewErrForbidden("job belongs to another employer")
	}

	return s.cascade.OnJobDeleted(ctx, id)
}
