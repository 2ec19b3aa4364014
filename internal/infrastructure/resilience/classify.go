package resilience

import (
	"context"
	"errors"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

// ClassifyStoreError retries transient store failures. Rejections such as an
// invalid transition or a held lock are answers, not faults, and never count
// against the breaker.
func ClassifyStoreError(err error) ErrorClassification {
	switch {
	case err == nil:
		return ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	case IsCircuitOpen(err):
		return ErrorClassification{Retryable: false, RecordFailure: true}
	case domain.IsKind(err, domain.ErrTemporary), domain.IsKind(err, domain.ErrStoreUnavailable):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	case isBusinessRejection(err):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	default:
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
}

func isBusinessRejection(err error) bool {
	for _, kind := range []error{
		domain.ErrInvalidTransition,
		domain.ErrAlreadyLocked,
		domain.ErrNotLockHolder,
		domain.ErrVersionNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrHandoverNotFound,
		domain.ErrLockNotFound,
		domain.ErrInvalidInput,
		domain.ErrUnauthorized,
	} {
		if domain.IsKind(err, kind) {
			return true
		}
	}
	return false
}
