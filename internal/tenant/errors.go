package tenant

import "errors"

var (
	// ErrUnresolved is returned when a scoped operation runs without a clinic code.
	ErrUnresolved = errors.New("clinic code not resolved")

	// ErrConflict is returned when a record already belongs to a clinic other
	// than the one active in the context.
	ErrConflict = errors.New("record belongs to a different clinic")
)
