package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/events"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
	"github.com/jobhive/jobhive/pkg/metrics"
	"go.uber.org/zap"
)

// EntityKind names a transitionable entity type.
type EntityKind string

const (
	KindJob         EntityKind = "job"
	KindApplication EntityKind = "application"
)

// TransitionExtra carries transition-specific payload: the rejection reason
// for job rejections, and annotations that ride along with an application
// transition.
type TransitionExtra struct {
	RejectionReason string
	Rating          *int
	Notes           *string
}

type TransitionService struct {
	store            store.Store
	eventWriter      *events.EventProducer
	jobGraph         TransitionGraph
	applicationGraph TransitionGraph
	bulkLimit        int
}

type TransitionOption func(s *TransitionService)

func WithJobGraph(g TransitionGraph) TransitionOption {
	return func(s *TransitionService) { s.jobGraph = g }
}

func WithApplicationGraph(g TransitionGraph) TransitionOption {
	return func(s *TransitionService) { s.applicationGraph = g }
}

func WithBulkLimit(limit int) TransitionOption {
	return func(s *TransitionService) { s.bulkLimit = limit }
}

func NewTransitionService(store store.Store, ew *events.EventProducer, opts ...TransitionOption) *TransitionService {
	s := &TransitionService{
		store:            store,
		eventWriter:      ew,
		jobGraph:         DefaultJobGraph(),
		applicationGraph: DefaultApplicationGraph(),
		bulkLimit:        defaultBulkLimit,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TransitionJob moves a job to the requested status on behalf of the actor.
// Checks run in order: existence, permission, idempotence, graph edge,
// required payload. The status write is conditioned on the freshly read
// status, a lost race surfaces as ErrConflict.
func (s *TransitionService) TransitionJob(ctx context.Context, id uuid.UUID, requested string, actor auth.Actor, extra *TransitionExtra) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if err := authorizeJobTransition(job, requested, actor); err != nil {
		return nil, err
	}

	if job.Status == requested {
		// retried client request, nothing to do
		return job, nil
	}

	if !s.jobGraph.Allows(job.Status, requested) {
		return nil, NewErrInvalidTransition(string(KindJob), job.Status, requested)
	}

	fields := map[string]interface{}{"status": requested}
	if requested == model.JobStatusRejected {
		if extra == nil || extra.RejectionReason == "" {
			return nil, NewErrMissingField("rejectionReason", "rejecting a job requires a reason")
		}
		fields["rejection_reason"] = extra.RejectionReason
	} else if job.RejectionReason != "" {
		fields["rejection_reason"] = ""
	}

	updated, err := s.store.Job().UpdateStatus(ctx, id, job.Status, fields)
	if err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return nil, NewErrConflict(id, string(KindJob))
		}
		return nil, NewErrStoreUnavailable(err)
	}

	metrics.IncreaseTransitionsTotal(string(KindJob), requested)
	s.emitStatusChanged(ctx, events.JobStatusMessageKind, events.StatusChangedEvent{
		EntityType: string(KindJob),
		EntityID:   id.String(),
		OldStatus:  job.Status,
		NewStatus:  requested,
		ActorID:    actor.ID.String(),
		ActorRole:  actor.Role,
	})

	return updated, nil
}

// TransitionApplication moves an application to the requested status.
// Annotations in extra (rating, notes) are written in the same update.
func (s *TransitionService) TransitionApplication(ctx context.Context, id uuid.UUID, requested string, actor auth.Actor, extra *TransitionExtra) (*model.Application, error) {
	application, err := s.store.Application().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrApplicationNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if err := s.authorizeApplicationReview(ctx, application, actor); err != nil {
		return nil, err
	}

	if application.Status == requested {
		return application, nil
	}

	if !s.applicationGraph.Allows(application.Status, requested) {
		return nil, NewErrInvalidTransition(string(KindApplication), application.Status, requested)
	}

	fields := map[string]interface{}{"status": requested}
	if extra != nil {
		if extra.Rating != nil {
			if *extra.Rating < 0 || *extra.Rating > 5 {
				return nil, NewErrInvalidArgument("rating must be between 0 and 5")
			}
			fields["rating"] = *extra.Rating
		}
		if extra.Notes != nil {
			fields["notes"] = *extra.Notes
		}
	}

	updated, err := s.store.Application().UpdateStatus(ctx, id, application.Status, fields)
	if err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return nil, NewErrConflict(id, string(KindApplication))
		}
		return nil, NewErrStoreUnavailable(err)
	}

	metrics.IncreaseTransitionsTotal(string(KindApplication), requested)
	s.emitStatusChanged(ctx, events.ApplicationStatusMessageKind, events.StatusChangedEvent{
		EntityType: string(KindApplication),
		EntityID:   id.String(),
		OldStatus:  application.Status,
		NewStatus:  requested,
		ActorID:    actor.ID.String(),
		ActorRole:  actor.Role,
	})

	return updated, nil
}

// employerJobTargets are the statuses an employer may request for their own
// job. Moderation decisions (active, rejected) are admin-only.
var employerJobTargets = map[string]bool{
	model.JobStatusPending: true,
	model.JobStatusClosed:  true,
}

func authorizeJobTransition(job *model.Job, requested string, actor auth.Actor) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsEmployer():
		if job.OwnerID != actor.ID {
			return NewErrForbidden("job belongs to another employer")
		}
		if !employerJobTargets[requested] {
			return NewErrForbidden("moderation decisions are admin-only")
		}
		return nil
	default:
		return NewErrForbidden("job seekers cannot transition jobs")
	}
}

// authorizeApplicationReview grants review transitions to the owning
// employer and admins. Orphaned applications are exempt from moderation
// entirely, their job no longer exists to moderate against.
func (s *TransitionService) authorizeApplicationReview(ctx context.Context, application *model.Application, actor auth.Actor) error {
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

// emitStatusChanged fires the notification hook. Delivery failures are
// logged, never propagated, a transition must not fail because a consumer is
// down.
func (s *TransitionService) emitStatusChanged(ctx context.Context, kind string, ev events.StatusChangedEvent) {
	if s.eventWriter == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		zap.S().Named("transition").Warnw("failed to encode status event", "error", err)
		return
	}
	if err := s.eventWriter.Write(ctx, kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("transition").Warnw("failed to emit status event", "error", err, "kind", kind)
	}
}
