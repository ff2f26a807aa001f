package service

import (
	"context"
	"log/slog"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// ListPets returns the clinic's pets.
func (s *Service) ListPets(ctx context.Context) ([]model.Pet, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListPets(ctx, s.DB, clinic, 0)
}

func (s *Service) GetPet(ctx context.Context, id int64) (*model.Pet, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "pet", id, store.GetPet)
}

// CreatePet registers a pet. The owner must belong to the same clinic.
func (s *Service) CreatePet(ctx context.Context, p *model.Pet) (*model.Pet, error) {
	trimAll(&p.Name, &p.Species, &p.Breed)
	clinic, err := clinicAndValidate(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := reference(ctx, s.DB, clinic, "owner_id", p.OwnerID, store.GetOwner); err != nil {
		return nil, err
	}

	created, err := store.CreatePet(ctx, s.DB, p)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "pet created", "pet", created.ID, "owner", created.OwnerID)
	s.record(ctx, model.ActionCreate, model.EntityPet, created.ID, created.Name, "Pet registered")
	return created, nil
}

func (s *Service) UpdatePet(ctx context.Context, id int64, p *model.Pet) (*model.Pet, error) {
	trimAll(&p.Name, &p.Species, &p.Breed)
	clinic, err := clinicAndValidate(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := reference(ctx, s.DB, clinic, "owner_id", p.OwnerID, store.GetOwner); err != nil {
		return nil, err
	}

	p.ID = id
	if err := store.UpdatePet(ctx, s.DB, clinic, p); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityPet, id, p.Name, "Pet details updated")
	return load(ctx, s.DB, clinic, "pet", id, store.GetPet)
}

func (s *Service) DeletePet(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	p, err := load(ctx, s.DB, clinic, "pet", id, store.GetPet)
	if err != nil {
		return err
	}
	if err := store.DeletePet(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "pet deleted", "pet", id)
	s.record(ctx, model.ActionDelete, model.EntityPet, id, p.Name, "Pet removed")
	return nil
}

// SetPetPhoto stores an already processed photo for a pet.
func (s *Service) SetPetPhoto(ctx context.Context, id int64, data []byte, mime string) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	p, err := load(ctx, s.DB, clinic, "pet", id, store.GetPet)
	if err != nil {
		return err
	}
	if err := store.SetPetPhoto(ctx, s.DB, clinic, id, data, mime); err != nil {
		return err
	}

	s.record(ctx, model.ActionUpdate, model.EntityPet, id, p.Name, "Photo uploaded")
	return nil
}

// PetPhoto returns a pet's photo. ErrNotFound if the pet has none.
func (s *Service) PetPhoto(ctx context.Context, id int64) ([]byte, string, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, "", err
	}

	data, mime, err := store.GetPetPhoto(ctx, s.DB, clinic, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", notFound("pet photo", id)
	}
	return data, mime, nil
}
