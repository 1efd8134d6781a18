package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist or is not visible to the requesting user.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing name, end date before start date).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would break an invariant held by
// existing data, such as shrinking a trip past days that still hold activities.
// Handlers map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned when a request carries no valid identity.
// Handlers map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")
