package lib

import (
	"errors"

	"github.com/traduct/dashsync/internal/model"
)

var (
	// ErrNotFound is returned when the addressed entity does not exist,
	// neither in the synchronized cache nor on the server.
	ErrNotFound = errors.New("not found")

	// ErrNotValid is returned when an operation's input is invalid, e.g.
	// cancelling a completed task or moving a grant out of range.
	ErrNotValid = errors.New("not valid")

	// ErrPolicyDenied is returned when the server refuses an action because
	// of a business rule, e.g. deactivating the last administrator. The
	// rejection is final; retrying fails again.
	ErrPolicyDenied = errors.New("denied by policy")

	// ErrTransient is returned on network or server failures that are safe
	// to retry.
	ErrTransient = errors.New("transient failure")
)

// mapError converts internal sentinel errors to their public counterparts
// while preserving the original error message and chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrPolicyDenied):
		return joinErrors(err, ErrPolicyDenied)
	case errors.Is(err, model.ErrTransient):
		return joinErrors(err, ErrTransient)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
