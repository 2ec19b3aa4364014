package httpadapter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

const defaultAdminActor = "admin"

type progressRequest struct {
	UnitIndex *int `json:"unit_index"`
}

func (rt *Router) queryLock(w http.ResponseWriter, r *http.Request) {
	state, err := rt.locks.Query(r.Context(), documentIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (rt *Router) releaseLock(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	err := rt.lifecycle.ReleaseLock(r.Context(), documentIDParam(r), worker)
	rt.metrics.RecordTransition(domain.ActionReleaseLock, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) recordProgress(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UnitIndex == nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "record progress", errors.New("unit_index is required")))
		return
	}

	lock, err := rt.locks.RecordProgress(r.Context(), documentIDParam(r), worker, *req.UnitIndex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.metrics.RecordProgressUpdate()
	writeJSON(w, http.StatusOK, lock)
}

func (rt *Router) listLocks(w http.ResponseWriter, r *http.Request) {
	states, err := rt.locks.ListLocks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("stale") == "true" {
		stale := states[:0]
		for _, s := range states {
			if s.IsStale {
				stale = append(stale, s)
			}
		}
		states = stale
	}
	writeJSON(w, http.StatusOK, map[string]any{"locks": states})
}

func (rt *Router) reclaimLock(w http.ResponseWriter, r *http.Request) {
	err := rt.lifecycle.ReclaimLock(r.Context(), documentIDParam(r), adminActor(r))
	rt.metrics.RecordTransition(domain.ActionReclaimLock, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adminActor attributes admin actions to the caller when it identifies itself.
func adminActor(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(workerIDHeader)); id != "" {
		return id
	}
	return defaultAdminActor
}
