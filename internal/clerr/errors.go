// Package clerr holds the error taxonomy shared by the reconciliation core.
// Precondition and validation failures are resolved locally and never reach
// the store; locked and remote failures surface per operation.
package clerr

import (
	"errors"
	"fmt"
)

// ErrExamLocked is returned when a save targets a published exam. Callers
// disable editing on this error instead of retrying.
var ErrExamLocked = errors.New("exam is published and locked for marks entry")

// PreconditionError reports a request that is rejected before any store
// call is made (missing preset values, empty selection, missing context).
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

func Precondition(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// ValidationError marks a single component's entered marks as unusable.
// It blocks only the offending component; sibling entries stay editable
// and savable.
type ValidationError struct {
	ComponentCode string
	Reason        string
}

func (e *ValidationError) Error() string {
	if e.ComponentCode == "" {
		return e.Reason
	}
	return fmt.Sprintf("component %s: %s", e.ComponentCode, e.Reason)
}

// RemoteError carries a backend rejection. Msg holds the backend's own
// message when one was available.
type RemoteError struct {
	Status int
	Msg    string
}

func (e *RemoteError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend request failed (status %d)", e.Status)
	}
	return e.Msg
}

func Remote(status int, msg string) error {
	return &RemoteError{Status: status, Msg: msg}
}
