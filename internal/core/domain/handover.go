package domain

import "time"

// Handover is context left by a worker who released unfinished work.
// It is attached to the document, not to a version, and survives lock destruction.
type Handover struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"document_id"`
	Memo           string    `json:"memo"`
	TermsNotes     string    `json:"terms_notes,omitempty"`
	CompletedUnits []int     `json:"completed_units"`
	WorkerID       string    `json:"worker_id"`
	WorkerName     string    `json:"worker_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
