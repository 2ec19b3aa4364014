package postgres

import (
	"errors"

	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/resilience"
)

// errCommitOutcomeUnknown marks a failed COMMIT: the transaction may have been applied.
var errCommitOutcomeUnknown = errors.New("commit outcome unknown")

const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

func classifyTxError(err error) resilience.ErrorClassification {
	if errors.Is(err, errCommitOutcomeUnknown) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
	return resilience.ClassifyStoreError(err)
}

func isRetryableConflict(err error) bool {
	code := pgCode(err)
	return code == serializationFailure || code == deadlockDetected
}
