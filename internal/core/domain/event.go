package domain

import "time"

// LifecycleEvent is emitted after a transition commits.
type LifecycleEvent struct {
	ID            string         `json:"id"`
	DocumentID    string         `json:"document_id"`
	Action        Action         `json:"action"`
	FromStatus    DocumentStatus `json:"from_status"`
	ToStatus      DocumentStatus `json:"to_status"`
	ActorID       string         `json:"actor_id"`
	VersionNumber int            `json:"version_number,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}
