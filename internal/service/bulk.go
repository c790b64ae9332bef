package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/pkg/metrics"
)

const defaultBulkLimit = 100

type BulkFailure struct {
	ID   uuid.UUID `json:"id"`
	Kind string    `json:"kind"`
}

type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// ApplyBulk applies one transition to every id, collecting per-item
// outcomes. Items are independent: a failure never aborts the rest and prior
// successes are never rolled back. Cancelling the context stops processing,
// already-committed transitions stay committed.
func (s *TransitionService) ApplyBulk(ctx context.Context, kind EntityKind, ids []uuid.UUID, requested string, actor auth.Actor) (*BulkResult, error) {
	if kind != KindJob && kind != KindApplication {
		return nil, NewErrInvalidArgument("unknown entity kind: " + string(kind))
	}

	ids = uniqueIDs(ids)
	if len(ids) > s.bulkLimit {
		return nil, NewErrTooManyItems(len(ids), s.bulkLimit)
	}

	result := &BulkResult{
		Succeeded: make([]uuid.UUID, 0, len(ids)),
		Failed:    make([]BulkFailure, 0),
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		var err error
		switch kind {
		case KindJob:
			_, err = s.TransitionJob(ctx, id, requested, actor, nil)
		case KindApplication:
			_, err = s.TransitionApplication(ctx, id, requested, actor, nil)
		}

		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Kind: ErrorKind(err)})
			metrics.IncreaseBulkItemsTotal("failed")
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		metrics.IncreaseBulkItemsTotal("succeeded")
	}

	return result, nil
}

// uniqueIDs drops duplicate ids, keeping first occurrences in order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
