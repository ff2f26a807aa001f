package service

import (
	"context"
	"log/slog"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

func (s *Service) ListVeterinarians(ctx context.Context) ([]model.Veterinarian, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListVeterinarians(ctx, s.DB, clinic)
}

func (s *Service) GetVeterinarian(ctx context.Context, id int64) (*model.Veterinarian, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "veterinarian", id, store.GetVeterinarian)
}

func (s *Service) CreateVeterinarian(ctx context.Context, v *model.Veterinarian) (*model.Veterinarian, error) {
	trimAll(&v.Name, &v.Email, &v.Specialization)
	if _, err := clinicAndValidate(ctx, v); err != nil {
		return nil, err
	}

	created, err := store.CreateVeterinarian(ctx, s.DB, v)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "veterinarian created", "veterinarian", created.ID)
	s.record(ctx, model.ActionCreate, model.EntityVeterinarian, created.ID, created.Name, "Veterinarian added")
	return created, nil
}

func (s *Service) UpdateVeterinarian(ctx context.Context, id int64, v *model.Veterinarian) (*model.Veterinarian, error) {
	trimAll(&v.Name, &v.Email, &v.Specialization)
	clinic, err := clinicAndValidate(ctx, v)
	if err != nil {
		return nil, err
	}

	v.ID = id
	if err := store.UpdateVeterinarian(ctx, s.DB, clinic, v); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityVeterinarian, id, v.Name, "Veterinarian updated")
	return load(ctx, s.DB, clinic, "veterinarian", id, store.GetVeterinarian)
}

func (s *Service) DeleteVeterinarian(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	v, err := load(ctx, s.DB, clinic, "veterinarian", id, store.GetVeterinarian)
	if err != nil {
		return err
	}
	if err := store.DeleteVeterinarian(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityVeterinarian, id, v.Name, "Veterinarian removed")
	return nil
}
