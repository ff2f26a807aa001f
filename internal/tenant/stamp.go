package tenant

import (
	"context"
	"fmt"
)

// Scoped is implemented by every record that belongs to a clinic.
type Scoped interface {
	TenantID() string
	SetTenantID(code string)
}

// Stamp prepares a new record for insertion.
//
// A record without a clinic code receives the one from ctx. A record that
// already carries a code is left untouched unless ctx holds a different one,
// in which case ErrConflict is returned. With neither set, ErrUnresolved.
func Stamp(ctx context.Context, rec Scoped) error {
	active, ok := FromContext(ctx)
	current := rec.TenantID()

	switch {
	case current == "" && !ok:
		return ErrUnresolved
	case current == "":
		rec.SetTenantID(active)
	case ok && current != active:
		return fmt.Errorf("%w: record has %q, context has %q", ErrConflict, current, active)
	}
	return nil
}
