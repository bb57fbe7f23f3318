package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrPolicyDenied is returned when the server refuses an action because of a
	// business rule (e.g. acting on the last remaining administrator).
	ErrPolicyDenied = errors.New("denied by policy")
	// ErrTransient is returned on network or server failures that are safe to retry.
	ErrTransient = errors.New("transient failure")
)
