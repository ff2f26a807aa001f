package api

import (
	"context"
	"net/http"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
)

// petRecords serves a clinical record kind listed per pet with ?pet_id=.
type petRecords[T any] struct {
	resource[T]
	list func(context.Context, int64) ([]T, error)
}

// List handles GET /api/<records>?pet_id=.
func (h petRecords[T]) List(w http.ResponseWriter, r *http.Request) {
	petID, ok := queryInt64(w, r, "pet_id")
	if !ok {
		return
	}

	items, err := h.list(r.Context(), petID)
	if err != nil {
		writeServiceError(w, r, err, "list "+h.kind+"s")
		return
	}
	list(w, items)
}

// VaccinationsHandler handles vaccination endpoints.
type VaccinationsHandler struct {
	Svc *service.Service
	petRecords[model.Vaccination]
}

func newVaccinationsHandler(svc *service.Service) *VaccinationsHandler {
	return &VaccinationsHandler{Svc: svc, petRecords: petRecords[model.Vaccination]{
		list: svc.ListVaccinations,
		resource: resource[model.Vaccination]{
			kind:   "vaccination",
			get:    svc.GetVaccination,
			create: svc.CreateVaccination,
			update: svc.UpdateVaccination,
			remove: svc.DeleteVaccination,
		},
	}}
}

// Due handles GET /api/vaccinations/due?days=30.
func (h *VaccinationsHandler) Due(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", defaultExpiryWindow)
	if !ok {
		return
	}

	vs, err := h.Svc.DueVaccinations(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err, "list vaccinations")
		return
	}
	list(w, vs)
}

func newMedicalRecordsHandler(svc *service.Service) petRecords[model.MedicalRecord] {
	return petRecords[model.MedicalRecord]{
		list: svc.ListMedicalRecords,
		resource: resource[model.MedicalRecord]{
			kind:   "medical record",
			get:    svc.GetMedicalRecord,
			create: svc.CreateMedicalRecord,
			update: svc.UpdateMedicalRecord,
			remove: svc.DeleteMedicalRecord,
		},
	}
}

func newPrescriptionsHandler(svc *service.Service) petRecords[model.Prescription] {
	return petRecords[model.Prescription]{
		list: svc.ListPrescriptions,
		resource: resource[model.Prescription]{
			kind:   "prescription",
			get:    svc.GetPrescription,
			create: svc.CreatePrescription,
			update: svc.UpdatePrescription,
			remove: svc.DeletePrescription,
		},
	}
}

func newLabTestsHandler(svc *service.Service) petRecords[model.LabTest] {
	return petRecords[model.LabTest]{
		list: svc.ListLabTests,
		resource: resource[model.LabTest]{
			kind:   "lab test",
			get:    svc.GetLabTest,
			create: svc.CreateLabTest,
			update: svc.UpdateLabTest,
			remove: svc.DeleteLabTest,
		},
	}
}
