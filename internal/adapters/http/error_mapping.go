package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotLockHolder):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrVersionNotFound),
		domain.IsKind(err, domain.ErrHandoverNotFound),
		domain.IsKind(err, domain.ErrLockNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrAlreadyLocked):
		return http.StatusLocked
	case domain.IsKind(err, domain.ErrStoreUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error      string     `json:"error"`
	Code       string     `json:"code"`
	Status     string     `json:"status,omitempty"`
	Action     string     `json:"action,omitempty"`
	HolderID   string     `json:"holder_id,omitempty"`
	HolderName string     `json:"holder_name,omitempty"`
	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
}

func errorCode(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrUnauthorized):
		return "unauthorized"
	case domain.IsKind(err, domain.ErrNotLockHolder):
		return "not_lock_holder"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return "document_not_found"
	case domain.IsKind(err, domain.ErrVersionNotFound):
		return "version_not_found"
	case domain.IsKind(err, domain.ErrHandoverNotFound):
		return "handover_not_found"
	case domain.IsKind(err, domain.ErrLockNotFound):
		return "lock_not_found"
	case domain.IsKind(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case domain.IsKind(err, domain.ErrAlreadyLocked):
		return "already_locked"
	case domain.IsKind(err, domain.ErrStoreUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return "unavailable"
	default:
		return "internal"
	}
}

// writeError renders err with the structured fields carried by typed domain errors.
// Internal failures are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	resp := errorResponse{
		Error: err.Error(),
		Code:  errorCode(err),
	}

	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		resp.Error = transitionErr.Error()
		resp.Status = string(transitionErr.Status)
		resp.Action = string(transitionErr.Action)
	}
	var conflictErr *domain.LockConflictError
	if errors.As(err, &conflictErr) {
		resp.Error = conflictErr.Error()
		resp.HolderID = conflictErr.HolderID
		resp.HolderName = conflictErr.HolderName
		if !conflictErr.AcquiredAt.IsZero() {
			acquiredAt := conflictErr.AcquiredAt
			resp.AcquiredAt = &acquiredAt
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("http_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		if status == http.StatusInternalServerError {
			resp.Error = "internal error"
		}
	}
	writeJSON(w, status, resp)
}
