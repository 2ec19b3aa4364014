package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyLocked     = errors.New("document already locked")
	ErrNotLockHolder     = errors.New("not lock holder")
	ErrVersionNotFound   = errors.New("version not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrHandoverNotFound  = errors.New("handover not found")
	ErrLockNotFound      = errors.New("lock not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// InvalidTransitionError reports an action attempted outside its precondition.
type InvalidTransitionError struct {
	DocumentID string
	Status     DocumentStatus
	Action     Action
	Reason     string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s document %s in status %s", e.Action, e.DocumentID, e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// LockConflictError reports an acquire attempt against a lock held by someone else.
type LockConflictError struct {
	DocumentID string
	HolderID   string
	HolderName string
	AcquiredAt time.Time
}

func (e *LockConflictError) Error() string {
	holder := e.HolderName
	if holder == "" {
		holder = e.HolderID
	}
	return fmt.Sprintf("document %s is being edited by %s", e.DocumentID, holder)
}

func (e *LockConflictError) Unwrap() error { return ErrAlreadyLocked }

func NewInvalidTransition(doc *Document, action Action, reason string) error {
	return &InvalidTransitionError{
		DocumentID: doc.ID,
		Status:     doc.Status,
		Action:     action,
		Reason:     reason,
	}
}
