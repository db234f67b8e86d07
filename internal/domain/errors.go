package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or belongs to a different user).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when credentials or a session token do not
// resolve to a user. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict is returned when a uniqueness constraint is violated,
// e.g. registering an email that is already taken.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
