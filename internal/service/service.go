// Package service implements the clinic domain on top of the scoped store.
//
// Every method operating on clinic data reads the clinic code from the
// context with tenant.Require, so a request whose clinic was never resolved
// fails with tenant.ErrUnresolved before any query runs.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

var (
	// ErrNotFound is returned when a record does not exist in the current clinic.
	ErrNotFound = store.ErrNotFound

	// ErrDuplicate is returned when a value that must be unique is already taken.
	ErrDuplicate = store.ErrDuplicate

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownClinic      = errors.New("unknown clinic code")
)

// ValidationError reports input that cannot be stored.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Service holds the dependencies shared by all domain operations.
type Service struct {
	DB  *sql.DB
	Now func() time.Time
}

// New returns a Service using the wall clock.
func New(db *sql.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

type actorKey struct{}

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID int64
	Name   string
}

// WithActor attaches the acting user to ctx for activity attribution.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the acting user, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// record appends an activity for the current clinic. A failure is logged and
// does not fail the operation that triggered it.
func (s *Service) record(ctx context.Context, action, entityType string, entityID int64, entityName, description string) {
	a := &model.Activity{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
		Description: description,
		CreatedAt:   s.now(),
	}
	if actor, ok := ActorFromContext(ctx); ok {
		a.UserID = &actor.UserID
		a.UserName = actor.Name
	}

	if err := store.RecordActivity(ctx, s.DB, a); err != nil {
		slog.ErrorContext(ctx, "failed to record activity", "action", action, "entity", entityType,
			"id", entityID, "error", err)
	}
}

// notFound wraps ErrNotFound with the kind and id of the missing record.
func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// load fetches a record of the clinic, mapping absence to ErrNotFound.
func load[T any](ctx context.Context, db *sql.DB, clinic, kind string, id int64, get func(context.Context, *sql.DB, string, int64) (*T, error)) (*T, error) {
	v, err := get(ctx, db, clinic, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(kind, id)
	}
	return v, nil
}

// reference checks that a record referenced by field belongs to the clinic.
func reference[T any](ctx context.Context, db *sql.DB, clinic, field string, id int64, get func(context.Context, *sql.DB, string, int64) (*T, error)) error {
	v, err := get(ctx, db, clinic, id)
	if err != nil {
		return err
	}
	if v == nil {
		return invalidf("%s: no record with id %d", field, id)
	}
	return nil
}

// optionalReference is reference for nullable foreign keys.
func optionalReference[T any](ctx context.Context, db *sql.DB, clinic, field string, id *int64, get func(context.Context, *sql.DB, string, int64) (*T, error)) error {
	if id == nil || *id == 0 {
		return nil
	}
	return reference(ctx, db, clinic, field, *id, get)
}

// nilIfZero turns a zero id from JSON input into a NULL reference.
func nilIfZero(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// clinicAndValidate resolves the clinic from ctx and validates v.
func clinicAndValidate(ctx context.Context, v any) (string, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return "", err
	}
	if err := check(v); err != nil {
		return "", err
	}
	return clinic, nil
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
