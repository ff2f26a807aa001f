package service

import (
	"context"
	"log/slog"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// UserUpdate holds the editable fields of a user.
type UserUpdate struct {
	Name string `json:"name" validate:"required,max=100"`
	Role string `json:"role" validate:"oneof=ADMINISTRATOR VETERINARIAN NURSE TECHNICIAN RECEPTIONIST"`
}

// NewUser is the input for creating a user in the current clinic.
type NewUser struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"oneof=ADMINISTRATOR VETERINARIAN NURSE TECHNICIAN RECEPTIONIST"`
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListUsers(ctx, s.DB, clinic)
}

// GetUser returns an active user of the clinic.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	u, err := load(ctx, s.DB, clinic, "user", id, store.GetUser)
	if err != nil {
		return nil, err
	}
	if u.DeletedAt != nil {
		return nil, notFound("user", id)
	}
	return u, nil
}

// CreateUser adds a user to the current clinic.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	trimAll(&in.Name, &in.Email)
	if _, err := clinicAndValidate(ctx, in); err != nil {
		return nil, err
	}

	created, err := s.createUser(ctx, &model.User{Name: in.Name, Email: in.Email, Role: in.Role}, in.Password)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user created", "user", created.Email, "role", created.Role)
	s.record(ctx, model.ActionCreate, model.EntityUser, created.ID, created.Name, "User added as "+created.Role)
	return created, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*model.User, error) {
	trimAll(&in.Name)
	clinic, err := clinicAndValidate(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := store.UpdateUser(ctx, s.DB, clinic, id, in.Name, in.Role); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user updated", "user", id, "role", in.Role)
	s.record(ctx, model.ActionUpdate, model.EntityUser, id, in.Name, "User updated")
	return s.GetUser(ctx, id)
}

// DeleteUser deactivates a user. Users cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if actor, ok := ActorFromContext(ctx); ok && actor.UserID == id {
		return invalidf("cannot delete your own account")
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteUser(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "user deleted", "user", u.Email)
	s.record(ctx, model.ActionDelete, model.EntityUser, id, u.Name, "User deactivated")
	return nil
}

// Permissions returns a user's effective permissions: the stored override if
// there is one, the role defaults otherwise.
func (s *Service) Permissions(ctx context.Context, userID int64) (model.Permissions, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.Permissions{}, err
	}

	override, err := store.GetUserPermissions(ctx, s.DB, u.ClinicCode, userID)
	if err != nil {
		return model.Permissions{}, err
	}
	if override != nil {
		return *override, nil
	}
	return model.DefaultPermissions(u.Role), nil
}

// SetPermissions stores a permission override for a user.
func (s *Service) SetPermissions(ctx context.Context, userID int64, p model.Permissions) (model.Permissions, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return model.Permissions{}, err
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.Permissions{}, err
	}
	if u.Role == model.RoleAdministrator && !p.Settings {
		return model.Permissions{}, invalidf("administrators always keep the settings permission")
	}

	if err := store.SetUserPermissions(ctx, s.DB, clinic, userID, p); err != nil {
		return model.Permissions{}, err
	}

	slog.InfoContext(ctx, "user permissions updated", "user", u.Email)
	s.record(ctx, model.ActionUpdate, model.EntityUser, userID, u.Name, "Permissions changed")
	return p, nil
}
