package meter

import "errors"

// Failure kinds surfaced by the reading service. Handlers map these to HTTP
// status codes at the request boundary; anything unwrapped is a store failure.
var (
	ErrValidation = errors.New("invalid reading")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
