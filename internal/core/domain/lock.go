package domain

import (
	"sort"
	"time"
)

// StaleLockThreshold is the age past which a lock is flagged for administrative attention.
// Stale locks stay valid until reclaimed.
const StaleLockThreshold = 24 * time.Hour

type Lock struct {
	DocumentID     string    `json:"document_id"`
	HolderID       string    `json:"holder_id"`
	AcquiredAt     time.Time `json:"acquired_at"`
	CompletedUnits []int     `json:"completed_units"`
}

func (l Lock) IsStale(now time.Time) bool {
	return now.Sub(l.AcquiredAt) > StaleLockThreshold
}

func (l Lock) HeldBy(workerID string) bool {
	return workerID != "" && l.HolderID == workerID
}

// LockState is the query-time view of a document lock.
type LockState struct {
	DocumentID     string     `json:"document_id"`
	Locked         bool       `json:"locked"`
	HolderID       string     `json:"holder_id,omitempty"`
	HolderName     string     `json:"holder_name,omitempty"`
	AcquiredAt     *time.Time `json:"acquired_at,omitempty"`
	IsStale        bool       `json:"is_stale"`
	CompletedUnits []int      `json:"completed_units,omitempty"`
}

func UnlockedState(documentID string) LockState {
	return LockState{DocumentID: documentID}
}

func NewLockState(lock Lock, holderName string, now time.Time) LockState {
	acquiredAt := lock.AcquiredAt
	return LockState{
		DocumentID:     lock.DocumentID,
		Locked:         true,
		HolderID:       lock.HolderID,
		HolderName:     holderName,
		AcquiredAt:     &acquiredAt,
		IsStale:        lock.IsStale(now),
		CompletedUnits: NormalizeUnits(lock.CompletedUnits),
	}
}

// NormalizeUnits returns a sorted copy without duplicates or negative indices.
func NormalizeUnits(units []int) []int {
	if len(units) == 0 {
		return []int{}
	}
	seen := make(map[int]struct{}, len(units))
	out := make([]int, 0, len(units))
	for _, u := range units {
		if u < 0 {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Ints(out)
	return out
}

// WithUnit returns the unit set with index added.
func WithUnit(units []int, index int) []int {
	return NormalizeUnits(append(append([]int(nil), units...), index))
}
