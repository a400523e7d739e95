package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so callers can classify failures without importing driver packages.
//
//   - ErrNotFound: record does not exist for the tenant
//   - ErrConflict: record already exists
//   - ErrInvalidState: the store rejected the write (constraint violation)
//   - ErrUnavailable: the backing store could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
