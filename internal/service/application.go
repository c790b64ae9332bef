package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
)

type ApplicationService struct {
	store store.Store
}

func NewApplicationService(store store.Store) *ApplicationService {
	return &ApplicationService{store: store}
}

type ApplicationCreateForm struct {
	JobID       uuid.UUID
	CVRef       string
	CoverLetter string
}

// Apply creates an application to an active job and bumps the job's
// application counter in the same transaction. One application per
// (job, applicant) pair, enforced by a unique index.
func (s *ApplicationService) Apply(ctx context.Context, form ApplicationCreateForm, actor auth.Actor) (*model.Application, error) {
	if !actor.IsJobSeeker() {
		return nil, NewErrForbidden("only job seekers can apply")
	}

	job, err := s.store.Job().Get(ctx, form.JobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(form.JobID)
		}
		return nil, NewErrStoreUnavailable(err)
	}
	if job.Status != model.JobStatusActive {
		return nil, NewErrInvalidArgument("job is not accepting applications")
	}

	ctx, err = s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	application, err := s.store.Application().Create(ctx, model.Application{
		ID:          uuid.New(),
		JobID:       form.JobID,
		ApplicantID: actor.ID,
		Status:      model.ApplicationStatusPending,
		CVRef:       form.CVRef,
		CoverLetter: form.CoverLetter,
	})
	if err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, NewErrDuplicate("already applied to this job")
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if err := s.store.Job().Increment(ctx, form.JobID, store.JobCounterApplications, 1); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, NewErrStoreUnavailable(err)
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	return application, nil
}

// Withdraw deletes the applicant's own application. Legal while pending, or
// unconditionally once orphaned, the referenced job no longer exists to
// moderate against. Withdrawal of a live application decrements the job's
// counter.
func (s *ApplicationService) Withdraw(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	application, err := s.store.Application().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrApplicationNotFound(id)
		}
		return NewErrStoreUnavailable(err)
	}

	if application.ApplicantID != actor.ID {
		return NewErrForbidden("application belongs to another applicant")
	}

	if application.Orphaned {
		if err := s.store.Application().Delete(ctx, id); err != nil {
			return NewErrStoreUnavailable(err)
		}
		return nil
	}

	if application.Status != model.ApplicationStatusPending {
		return NewErrInvalidTransition(string(KindApplication), application.Status, "withdrawn")
	}

	ctx, err = s.store.NewTransactionContext(ctx)
	if err != nil {
		return NewErrStoreUnavailable(err)
	}

	if err := s.store.Application().Delete(ctx, id); err != nil {
		_, _ = store.Rollback(ctx)
		return NewErrStoreUnavailable(err)
	}

	if err := s.store.Job().Increment(ctx, application.JobID, store.JobCounterApplications, -1); err != nil {
		_, _ = store.Rollback(ctx)
		return NewErrStoreUnavailable(err)
	}

	if _, err := store.Commit(ctx); err != nil {
		return NewErrStoreUnavailable(err)
	}

	return nil
}

// Annotate sets the employer's rating and/or notes. Annotations are
// orthogonal to status and legal in any status.
func (s *ApplicationService) Annotate(ctx context.Context, id uuid.UUID, rating *int, notes *string, actor auth.Actor) (*model.Application, error) {
	application, err := s.store.Application().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrApplicationNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if err := s.authorizeReview(ctx, application, actor); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if rating != nil {
		if *rating < 0 || *rating > 5 {
			return nil, NewErrInvalidArgument("rating must be between 0 and 5")
		}
		fields["rating"] = *rating
	}
	if notes != nil {
		fields["notes"] = *notes
	}
	if len(fields) == 0 {
		return application, nil
	}

	updated, err := s.store.Application().UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrApplicationNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}
	return updated, nil
}

// ScheduleInterview appends one interview to the application's ordered list.
func (s *ApplicationService) ScheduleInterview(ctx context.Context, id uuid.UUID, detail model.InterviewDetail, actor auth.Actor) (*model.Application, error) {
	application, err := s.store.Application().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrApplicationNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if err := s.authorizeReview(ctx, application, actor); err != nil {
		return nil, err
	}

	details, err := application.Interviews()
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}
	details = append(details, detail)

	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	updated, err := s.store.Application().UpdateFields(ctx, id, map[string]interface{}{"interview_details": encoded})
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}
	return updated, nil
}

func (s *ApplicationService) authorizeReview(ctx context.Context, application *model.Application, actor auth.Actor) error {
	if application.Orphaned {
		return NewErrForbidden("application is orphaned")
	}
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsEmployer() {
		return NewErrForbidden("job seekers cannot review applications")
	}
	job, err := s.store.Job().Get(ctx, application.JobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrForbidden("application's job no longer exists")
		}
		return NewErrStoreUnavailable(err)
	}
	if job.OwnerID != actor.ID {
		return NewErrForbidden("application belongs to another employer's job")
	}
	return nil
}
