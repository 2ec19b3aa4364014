package domain

import "time"

type DocumentStatus string

const (
	StatusDraft              DocumentStatus = "DRAFT"
	StatusPendingTranslation DocumentStatus = "PENDING_TRANSLATION"
	StatusInTranslation      DocumentStatus = "IN_TRANSLATION"
	StatusPendingReview      DocumentStatus = "PENDING_REVIEW"
	StatusApproved           DocumentStatus = "APPROVED"
	StatusPublished          DocumentStatus = "PUBLISHED"
)

// Statuses lists every lifecycle status in flow order.
func Statuses() []DocumentStatus {
	return []DocumentStatus{
		StatusDraft,
		StatusPendingTranslation,
		StatusInTranslation,
		StatusPendingReview,
		StatusApproved,
		StatusPublished,
	}
}

func (s DocumentStatus) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Finalized reports whether the status reports full progress regardless of units.
func (s DocumentStatus) Finalized() bool {
	return s == StatusApproved || s == StatusPublished
}

type Document struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Status           DocumentStatus `json:"status"`
	CategoryID       string         `json:"category_id,omitempty"`
	CurrentVersionID string         `json:"current_version_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type DocumentFilter struct {
	Status     DocumentStatus
	CategoryID string
}

// DocumentView is the read model assembled for a single document.
type DocumentView struct {
	Document       Document  `json:"document"`
	CurrentVersion *Version  `json:"current_version,omitempty"`
	Lock           LockState `json:"lock"`
	Handover       *Handover `json:"handover,omitempty"`
	TotalUnits     int       `json:"total_units"`
	Progress       int       `json:"progress"`
}

type Favorite struct {
	WorkerID   string    `json:"worker_id"`
	DocumentID string    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}
