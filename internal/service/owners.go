package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// ListOwners returns the clinic's owners, optionally filtered by search.
func (s *Service) ListOwners(ctx context.Context, search string) ([]model.Owner, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListOwners(ctx, s.DB, clinic, search)
}

// GetOwner returns one owner of the clinic.
func (s *Service) GetOwner(ctx context.Context, id int64) (*model.Owner, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "owner", id, store.GetOwner)
}

// OwnerPets returns the pets of one owner of the clinic.
func (s *Service) OwnerPets(ctx context.Context, ownerID int64) ([]model.Pet, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := load(ctx, s.DB, clinic, "owner", ownerID, store.GetOwner); err != nil {
		return nil, err
	}
	return store.ListPets(ctx, s.DB, clinic, ownerID)
}

func (s *Service) CreateOwner(ctx context.Context, o *model.Owner) (*model.Owner, error) {
	trimAll(&o.FirstName, &o.LastName, &o.Email, &o.Phone)
	if _, err := clinicAndValidate(ctx, o); err != nil {
		return nil, err
	}

	created, err := store.CreateOwner(ctx, s.DB, o)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "owner created", "owner", created.ID)
	s.record(ctx, model.ActionCreate, model.EntityOwner, created.ID, created.FullName(), "Owner registered")
	return created, nil
}

func (s *Service) UpdateOwner(ctx context.Context, id int64, o *model.Owner) (*model.Owner, error) {
	trimAll(&o.FirstName, &o.LastName, &o.Email, &o.Phone)
	clinic, err := clinicAndValidate(ctx, o)
	if err != nil {
		return nil, err
	}

	o.ID = id
	if err := store.UpdateOwner(ctx, s.DB, clinic, o); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityOwner, id, o.FullName(), "Owner details updated")
	return load(ctx, s.DB, clinic, "owner", id, store.GetOwner)
}

// DeleteOwner removes an owner. Owners with pets or invoices cannot be removed.
func (s *Service) DeleteOwner(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	o, err := load(ctx, s.DB, clinic, "owner", id, store.GetOwner)
	if err != nil {
		return err
	}

	if err := store.DeleteOwner(ctx, s.DB, clinic, id); err != nil {
		var depErr *store.HasDependentsError
		if errors.As(err, &depErr) {
			return invalidf("owner %s still has %d %s", o.FullName(), depErr.Count, depErr.Kind)
		}
		return fmt.Errorf("deleting owner: %w", err)
	}

	slog.InfoContext(ctx, "owner deleted", "owner", id)
	s.record(ctx, model.ActionDelete, model.EntityOwner, id, o.FullName(), "Owner removed")
	return nil
}
