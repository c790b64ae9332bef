package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/events"
	"github.com/jobhive/jobhive/internal/store"
	"go.uber.org/zap"
)

// CascadeService reacts to terminal events: job deletion orphans dependent
// applications, account deactivation cascades nothing and is mostly a
// notification point. Public-search exclusion of deactivated owners is the
// query composer's job.
type CascadeService struct {
	store       store.Store
	eventWriter *events.EventProducer
}

func NewCascadeService(store store.Store, ew *events.EventProducer) *CascadeService {
	return &CascadeService{store: store, eventWriter: ew}
}

// OnJobDeleted flags every application referencing the job as orphaned and
// hard-deletes the job, in one transaction. Orphaned applications keep the
// job id for display and may be deleted by their applicant at will.
func (s *CascadeService) OnJobDeleted(ctx context.Context, jobID uuid.UUID) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return NewErrStoreUnavailable(err)
	}

	if _, err := s.store.Job().Get(ctx, jobID); err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrJobNotFound(jobID)
		}
		return NewErrStoreUnavailable(err)
	}

	orphaned, err := s.store.Application().MarkOrphanedByJob(ctx, jobID)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return NewErrStoreUnavailable(err)
	}

	if err := s.store.Job().Delete(ctx, jobID); err != nil {
		_, _ = store.Rollback(ctx)
		return NewErrStoreUnavailable(err)
	}

	if _, err := store.Commit(ctx); err != nil {
		return NewErrStoreUnavailable(err)
	}

	s.emit(ctx, events.JobDeletedMessageKind, events.JobDeletedEvent{
		JobID:                jobID.String(),
		OrphanedApplications: orphaned,
	})

	return nil
}

// OnAccountDeactivated is deliberately cascade-free: the user's jobs and
// applications stay queryable for admin audit and are only excluded from
// public-facing search.
func (s *CascadeService) OnAccountDeactivated(ctx context.Context, userID uuid.UUID, oldStatus, newStatus string) error {
	s.emit(ctx, events.AccountStatusMessageKind, events.StatusChangedEvent{
		EntityType: "user",
		EntityID:   userID.String(),
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
	})
	return nil
}

func (s *CascadeService) emit(ctx context.Context, kind string, payload interface{}) {
	if s.eventWriter == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		zap.S().Named("cascade").Warnw("failed to encode event", "error", err)
		return
	}
	if err := s.eventWriter.Write(ctx, kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("cascade").Warnw("failed to emit event", "error", err, "kind", kind)
	}
}
