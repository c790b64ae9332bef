package events

// StatusChangedEvent is emitted after every successful transition. Consumers
// (mail digests, in-app notifications) subscribe downstream, delivery never
// affects the transition itself.
type StatusChangedEvent struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	ActorID    string `json:"actor_id,omitempty"`
	ActorRole  string `json:"actor_role,omitempty"`
}

// JobDeletedEvent is emitted after a job has been removed and its
// applications orphaned.
type JobDeletedEvent struct {
	JobID                string `json:"job_id"`
	OrphanedApplications int64  `json:"orphaned_applications"`
}
