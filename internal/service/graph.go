package service

import "github.com/jobhive/jobhive/internal/store/model"

// TransitionGraph is a directed status graph. The transition engine is
// parameterized over it: deployments that need a different application
// pipeline construct the engine with their own graph.
type TransitionGraph map[string][]string

func (g TransitionGraph) Allows(from, to string) bool {
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultJobGraph returns the moderation lifecycle for jobs. Deletion is not
// an edge, it is a terminal event handled by the cascade resolver.
func DefaultJobGraph() TransitionGraph {
	return TransitionGraph{
		model.JobStatusDraft:   {model.JobStatusPending},
		model.JobStatusPending: {model.JobStatusActive, model.JobStatusRejected},
		model.JobStatusActive:  {model.JobStatusClosed},
	}
}

// DefaultApplicationGraph returns the canonical review pipeline. Withdrawal
// is a delete, not an edge.
func DefaultApplicationGraph() TransitionGraph {
	return TransitionGraph{
		model.ApplicationStatusPending:    {model.ApplicationStatusInterviews, model.ApplicationStatusRejected},
		model.ApplicationStatusInterviews: {model.ApplicationStatusAccepted, model.ApplicationStatusRejected},
		model.ApplicationStatusAccepted:   {model.ApplicationStatusOfferAccepted, model.ApplicationStatusOfferRejected},
	}
}
