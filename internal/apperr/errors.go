package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness conflict or a resource taken concurrently (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested order, assignment or driver does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidState indicates a transition that is illegal from the current state.
var ErrInvalidState = errors.New("invalid state")

// ErrUnauthorized indicates that the acting driver is not the one bound to the assignment.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNoCandidate signals that no online driver was found near the pickup.
// It is a retry signal, not a failure of the calling operation.
var ErrNoCandidate = errors.New("no candidate driver")
