package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/klinika/internal/imaging"
	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
)

// OwnersHandler handles owner endpoints.
type OwnersHandler struct {
	Svc *service.Service
	resource[model.Owner]
}

func newOwnersHandler(svc *service.Service) *OwnersHandler {
	return &OwnersHandler{Svc: svc, resource: resource[model.Owner]{
		kind:   "owner",
		get:    svc.GetOwner,
		create: svc.CreateOwner,
		update: svc.UpdateOwner,
		remove: svc.DeleteOwner,
	}}
}

// List handles GET /api/owners?search=.
func (h *OwnersHandler) List(w http.ResponseWriter, r *http.Request) {
	owners, err := h.Svc.ListOwners(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, err, "list owners")
		return
	}
	list(w, owners)
}

// Pets handles GET /api/owners/{id}/pets.
func (h *OwnersHandler) Pets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "owner")
	if !ok {
		return
	}

	pets, err := h.Svc.OwnerPets(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "list owner pets")
		return
	}
	list(w, pets)
}

// PetsHandler handles pet endpoints.
type PetsHandler struct {
	Svc *service.Service
	resource[model.Pet]
}

func newPetsHandler(svc *service.Service) *PetsHandler {
	return &PetsHandler{Svc: svc, resource: resource[model.Pet]{
		kind:   "pet",
		get:    svc.GetPet,
		create: svc.CreatePet,
		update: svc.UpdatePet,
		remove: svc.DeletePet,
	}}
}

// List handles GET /api/pets?owner_id=.
func (h *PetsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := queryInt64(w, r, "owner_id")
	if !ok {
		return
	}

	var (
		pets []model.Pet
		err  error
	)
	if ownerID != 0 {
		pets, err = h.Svc.OwnerPets(r.Context(), ownerID)
	} else {
		pets, err = h.Svc.ListPets(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err, "list pets")
		return
	}
	list(w, pets)
}

// UploadPhoto handles PUT /api/pets/{id}/photo with a multipart "photo" field.
func (h *PetsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "pet")
	if !ok {
		return
	}

	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, "photo too large")
		return
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, "photo must be JPEG or PNG")
		return
	case err != nil:
		writeServiceError(w, r, err, "process photo")
		return
	}

	if err := h.Svc.SetPetPhoto(r.Context(), id, photo.Data, photo.MIME); err != nil {
		writeServiceError(w, r, err, "save photo")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "photo uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetPhoto handles GET /api/pets/{id}/photo.
func (h *PetsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "pet")
	if !ok {
		return
	}

	data, mime, err := h.Svc.PetPhoto(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// VeterinariansHandler handles veterinarian endpoints.
type VeterinariansHandler struct {
	Svc *service.Service
	resource[model.Veterinarian]
}

func newVeterinariansHandler(svc *service.Service) *VeterinariansHandler {
	return &VeterinariansHandler{Svc: svc, resource: resource[model.Veterinarian]{
		kind:   "veterinarian",
		get:    svc.GetVeterinarian,
		create: svc.CreateVeterinarian,
		update: svc.UpdateVeterinarian,
		remove: svc.DeleteVeterinarian,
	}}
}

// List handles GET /api/veterinarians.
func (h *VeterinariansHandler) List(w http.ResponseWriter, r *http.Request) {
	vets, err := h.Svc.ListVeterinarians(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list veterinarians")
		return
	}
	list(w, vets)
}
