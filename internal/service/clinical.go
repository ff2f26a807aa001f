package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// checkPetAndVet verifies the pet and the optional veterinarian belong to the clinic.
func (s *Service) checkPetAndVet(ctx context.Context, clinic string, petID int64, vetID *int64) error {
	if err := reference(ctx, s.DB, clinic, "pet_id", petID, store.GetPet); err != nil {
		return err
	}
	return optionalReference(ctx, s.DB, clinic, "veterinarian_id", vetID, store.GetVeterinarian)
}

// Vaccinations

func (s *Service) ListVaccinations(ctx context.Context, petID int64) ([]model.Vaccination, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListVaccinations(ctx, s.DB, clinic, petID)
}

// DueVaccinations returns vaccinations whose next due date falls within the
// given number of days, including ones already overdue.
func (s *Service) DueVaccinations(ctx context.Context, days int) ([]model.Vaccination, error) {
	if days < 0 {
		return nil, invalidf("days must not be negative")
	}

	all, err := s.ListVaccinations(ctx, 0)
	if err != nil {
		return nil, err
	}

	limit := model.StartOfDay(s.now()).AddDate(0, 0, days+1)
	due := slices.DeleteFunc(all, func(v model.Vaccination) bool {
		return v.NextDueDate == nil || !v.NextDueDate.Before(limit)
	})
	slices.SortFunc(due, func(a, b model.Vaccination) int { return a.NextDueDate.Compare(*b.NextDueDate) })
	return due, nil
}

func (s *Service) GetVaccination(ctx context.Context, id int64) (*model.Vaccination, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "vaccination", id, store.GetVaccination)
}

func (s *Service) prepareVaccination(ctx context.Context, clinic string, v *model.Vaccination) error {
	v.VeterinarianID = nilIfZero(v.VeterinarianID)
	if err := s.checkPetAndVet(ctx, clinic, v.PetID, v.VeterinarianID); err != nil {
		return err
	}
	if v.Status == "" {
		v.Status = model.VaccinationScheduled
		if v.AdministeredDate != nil {
			v.Status = model.VaccinationAdministered
		}
	}
	if v.AdministeredDate != nil && v.NextDueDate != nil && v.NextDueDate.Before(*v.AdministeredDate) {
		return invalidf("next_due_date must not be before administered_date")
	}
	return nil
}

func (s *Service) CreateVaccination(ctx context.Context, v *model.Vaccination) (*model.Vaccination, error) {
	clinic, err := clinicAndValidate(ctx, v)
	if err != nil {
		return nil, err
	}
	if err := s.prepareVaccination(ctx, clinic, v); err != nil {
		return nil, err
	}

	created, err := store.CreateVaccination(ctx, s.DB, v)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "vaccination recorded", "vaccination", created.ID, "pet", created.PetID)
	s.record(ctx, model.ActionCreate, model.EntityVaccination, created.ID, created.VaccineType, "Vaccination recorded")
	return created, nil
}

func (s *Service) UpdateVaccination(ctx context.Context, id int64, v *model.Vaccination) (*model.Vaccination, error) {
	clinic, err := clinicAndValidate(ctx, v)
	if err != nil {
		return nil, err
	}
	if err := s.prepareVaccination(ctx, clinic, v); err != nil {
		return nil, err
	}

	v.ID = id
	if err := store.UpdateVaccination(ctx, s.DB, clinic, v); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityVaccination, id, v.VaccineType, "Vaccination updated")
	return load(ctx, s.DB, clinic, "vaccination", id, store.GetVaccination)
}

func (s *Service) DeleteVaccination(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	v, err := load(ctx, s.DB, clinic, "vaccination", id, store.GetVaccination)
	if err != nil {
		return err
	}
	if err := store.DeleteVaccination(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityVaccination, id, v.VaccineType, "Vaccination removed")
	return nil
}

// Medical records

func (s *Service) ListMedicalRecords(ctx context.Context, petID int64) ([]model.MedicalRecord, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListMedicalRecords(ctx, s.DB, clinic, petID)
}

func (s *Service) GetMedicalRecord(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "medical record", id, store.GetMedicalRecord)
}

func (s *Service) prepareMedicalRecord(ctx context.Context, clinic string, r *model.MedicalRecord) error {
	trimAll(&r.Title)
	r.VeterinarianID = nilIfZero(r.VeterinarianID)
	if err := s.checkPetAndVet(ctx, clinic, r.PetID, r.VeterinarianID); err != nil {
		return err
	}
	if r.RecordDate.IsZero() {
		r.RecordDate = s.now()
	}
	if r.Status == "" {
		r.Status = model.RecordPending
	}
	return nil
}

func (s *Service) CreateMedicalRecord(ctx context.Context, r *model.MedicalRecord) (*model.MedicalRecord, error) {
	clinic, err := clinicAndValidate(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := s.prepareMedicalRecord(ctx, clinic, r); err != nil {
		return nil, err
	}

	created, err := store.CreateMedicalRecord(ctx, s.DB, r)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "medical record created", "record", created.ID, "pet", created.PetID)
	s.record(ctx, model.ActionCreate, model.EntityMedicalRecord, created.ID, created.Title, created.Type+" record added")
	return created, nil
}

func (s *Service) UpdateMedicalRecord(ctx context.Context, id int64, r *model.MedicalRecord) (*model.MedicalRecord, error) {
	clinic, err := clinicAndValidate(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := s.prepareMedicalRecord(ctx, clinic, r); err != nil {
		return nil, err
	}

	r.ID = id
	if err := store.UpdateMedicalRecord(ctx, s.DB, clinic, r); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityMedicalRecord, id, r.Title, "Record updated")
	return load(ctx, s.DB, clinic, "medical record", id, store.GetMedicalRecord)
}

func (s *Service) DeleteMedicalRecord(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	r, err := load(ctx, s.DB, clinic, "medical record", id, store.GetMedicalRecord)
	if err != nil {
		return err
	}
	if err := store.DeleteMedicalRecord(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityMedicalRecord, id, r.Title, "Record removed")
	return nil
}

// Prescriptions

func (s *Service) ListPrescriptions(ctx context.Context, petID int64) ([]model.Prescription, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListPrescriptions(ctx, s.DB, clinic, petID)
}

func (s *Service) GetPrescription(ctx context.Context, id int64) (*model.Prescription, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "prescription", id, store.GetPrescription)
}

func (s *Service) preparePrescription(ctx context.Context, clinic string, p *model.Prescription) error {
	trimAll(&p.MedicationName, &p.Dosage)
	p.VeterinarianID = nilIfZero(p.VeterinarianID)
	if err := s.checkPetAndVet(ctx, clinic, p.PetID, p.VeterinarianID); err != nil {
		return err
	}
	if p.PrescribedDate.IsZero() {
		p.PrescribedDate = s.now()
	}
	if p.Status == "" {
		p.Status = model.PrescriptionActive
	}
	return nil
}

func (s *Service) CreatePrescription(ctx context.Context, p *model.Prescription) (*model.Prescription, error) {
	clinic, err := clinicAndValidate(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.preparePrescription(ctx, clinic, p); err != nil {
		return nil, err
	}

	created, err := store.CreatePrescription(ctx, s.DB, p)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "prescription created", "prescription", created.ID, "pet", created.PetID)
	s.record(ctx, model.ActionCreate, model.EntityPrescription, created.ID, created.MedicationName,
		"Prescribed "+created.Dosage)
	return created, nil
}

func (s *Service) UpdatePrescription(ctx context.Context, id int64, p *model.Prescription) (*model.Prescription, error) {
	clinic, err := clinicAndValidate(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.preparePrescription(ctx, clinic, p); err != nil {
		return nil, err
	}

	p.ID = id
	if err := store.UpdatePrescription(ctx, s.DB, clinic, p); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityPrescription, id, p.MedicationName, "Prescription updated")
	return load(ctx, s.DB, clinic, "prescription", id, store.GetPrescription)
}

func (s *Service) DeletePrescription(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	p, err := load(ctx, s.DB, clinic, "prescription", id, store.GetPrescription)
	if err != nil {
		return err
	}
	if err := store.DeletePrescription(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityPrescription, id, p.MedicationName, "Prescription removed")
	return nil
}

// Lab tests

func (s *Service) ListLabTests(ctx context.Context, petID int64) ([]model.LabTest, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListLabTests(ctx, s.DB, clinic, petID)
}

func (s *Service) GetLabTest(ctx context.Context, id int64) (*model.LabTest, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "lab test", id, store.GetLabTest)
}

func (s *Service) prepareLabTest(ctx context.Context, clinic string, l *model.LabTest) error {
	trimAll(&l.TestType)
	l.VeterinarianID = nilIfZero(l.VeterinarianID)
	if err := s.checkPetAndVet(ctx, clinic, l.PetID, l.VeterinarianID); err != nil {
		return err
	}
	if l.RequestedDate.IsZero() {
		l.RequestedDate = s.now()
	}
	if l.Status == "" {
		l.Status = model.LabRequested
	}
	if l.Status == model.LabCompleted && l.CompletedDate == nil {
		now := s.now()
		l.CompletedDate = &now
	}
	return nil
}

func (s *Service) CreateLabTest(ctx context.Context, l *model.LabTest) (*model.LabTest, error) {
	clinic, err := clinicAndValidate(ctx, l)
	if err != nil {
		return nil, err
	}
	if err := s.prepareLabTest(ctx, clinic, l); err != nil {
		return nil, err
	}

	created, err := store.CreateLabTest(ctx, s.DB, l)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "lab test requested", "lab_test", created.ID, "pet", created.PetID)
	s.record(ctx, model.ActionCreate, model.EntityLabTest, created.ID, created.TestType, "Lab test requested")
	return created, nil
}

func (s *Service) UpdateLabTest(ctx context.Context, id int64, l *model.LabTest) (*model.LabTest, error) {
	clinic, err := clinicAndValidate(ctx, l)
	if err != nil {
		return nil, err
	}
	if err := s.prepareLabTest(ctx, clinic, l); err != nil {
		return nil, err
	}

	l.ID = id
	if err := store.UpdateLabTest(ctx, s.DB, clinic, l); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityLabTest, id, l.TestType, "Lab test updated")
	return load(ctx, s.DB, clinic, "lab test", id, store.GetLabTest)
}

func (s *Service) DeleteLabTest(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	l, err := load(ctx, s.DB, clinic, "lab test", id, store.GetLabTest)
	if err != nil {
		return err
	}
	if err := store.DeleteLabTest(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityLabTest, id, l.TestType, "Lab test removed")
	return nil
}
