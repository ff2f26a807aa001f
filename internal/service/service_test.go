package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klinika/internal/db"
	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{DB: db.NewTestDB(t), Now: func() time.Time { return testNow }}
}

func clinicCtx(code string) context.Context {
	ctx := tenant.WithClinicCode(context.Background(), code)
	return WithActor(ctx, Actor{UserID: 100, Name: "Ana"})
}

func mustOwner(t *testing.T, s *Service, ctx context.Context) *model.Owner {
	t.Helper()
	o, err := s.CreateOwner(ctx, &model.Owner{FirstName: "Ana", LastName: "Novak"})
	require.NoError(t, err)
	return o
}

func mustPet(t *testing.T, s *Service, ctx context.Context, ownerID int64) *model.Pet {
	t.Helper()
	p, err := s.CreatePet(ctx, &model.Pet{OwnerID: ownerID, Name: "Luna", Species: "Dog"})
	require.NoError(t, err)
	return p
}

func TestUnresolvedClinic(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.ListOwners(ctx, "")
	assert.ErrorIs(t, err, tenant.ErrUnresolved)

	_, err = s.CreateOwner(ctx, &model.Owner{FirstName: "Ana", LastName: "Novak"})
	assert.ErrorIs(t, err, tenant.ErrUnresolved)

	_, err = s.DashboardStats(ctx)
	assert.ErrorIs(t, err, tenant.ErrUnresolved)
}

func TestValidation(t *testing.T) {
	s := newTestService(t)

	_, err := s.CreateOwner(clinicCtx("DEMO123"), &model.Owner{LastName: "Novak", Email: "not-an-email"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "first_name is required")
	assert.Contains(t, verr.Message, "email must be a valid email address")
}

func TestForeignRecordIsNotFound(t *testing.T) {
	s := newTestService(t)
	demo := clinicCtx("DEMO123")
	other := clinicCtx("OTHER99")

	o := mustOwner(t, s, demo)

	_, err := s.GetOwner(other, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateOwner(other, o.ID, &model.Owner{FirstName: "X", LastName: "Y"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteOwner(other, o.ID), ErrNotFound)

	got, err := s.GetOwner(demo, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
}

func TestCrossClinicReferenceRejected(t *testing.T) {
	s := newTestService(t)
	demo := clinicCtx("DEMO123")
	other := clinicCtx("OTHER99")

	o := mustOwner(t, s, demo)

	_, err := s.CreatePet(other, &model.Pet{OwnerID: o.ID, Name: "Luna", Species: "Dog"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "owner_id")

	p := mustPet(t, s, demo, o.ID)
	vet, err := s.CreateVeterinarian(other, &model.Veterinarian{Name: "Dr. Kos"})
	require.NoError(t, err)

	_, err = s.CreateAppointment(demo, &model.Appointment{
		PetID: p.ID, VeterinarianID: &vet.ID, ScheduledAt: testNow, Type: model.AppointmentCheckup,
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "veterinarian_id")
}

func TestConflictingClinicInBody(t *testing.T) {
	s := newTestService(t)

	o := &model.Owner{FirstName: "Ana", LastName: "Novak"}
	o.ClinicCode = "OTHER99"
	_, err := s.CreateOwner(clinicCtx("DEMO123"), o)
	assert.ErrorIs(t, err, tenant.ErrConflict)
}

func TestDeleteOwnerWithPets(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")

	o := mustOwner(t, s, ctx)
	mustPet(t, s, ctx, o.ID)

	err := s.DeleteOwner(ctx, o.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "pets")
}

func TestAppointmentDefaults(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")

	o := mustOwner(t, s, ctx)
	p := mustPet(t, s, ctx, o.ID)

	a, err := s.CreateAppointment(ctx, &model.Appointment{
		PetID: p.ID, ScheduledAt: testNow.Add(2 * time.Hour), Type: model.AppointmentCheckup,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultAppointmentDuration, a.Duration)
	assert.Equal(t, model.AppointmentScheduled, a.Status)

	today, err := s.TodayAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 1)

	_, err = s.SetAppointmentStatus(ctx, a.ID, "DONE")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	a, err = s.SetAppointmentStatus(ctx, a.ID, model.AppointmentCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCancelled, a.Status)

	upcoming, err := s.UpcomingAppointments(ctx)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestInvoiceNumberingAndPayment(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")

	o := mustOwner(t, s, ctx)
	newInvoice := func() *model.Invoice {
		return &model.Invoice{
			OwnerID: o.ID,
			Tax:     500,
			Items: []model.InvoiceItem{
				{Description: "Consultation", Category: model.ItemConsultation, Quantity: 1, UnitPrice: 4500},
			},
		}
	}

	first, err := s.CreateInvoice(ctx, newInvoice())
	require.NoError(t, err)
	second, err := s.CreateInvoice(ctx, newInvoice())
	require.NoError(t, err)
	other, err := s.CreateInvoice(clinicCtx("OTHER99"), &model.Invoice{OwnerID: mustOwner(t, s, clinicCtx("OTHER99")).ID})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260310-001", first.InvoiceNumber)
	assert.Equal(t, "INV-20260310-002", second.InvoiceNumber)
	assert.Equal(t, "INV-20260310-001", other.InvoiceNumber)
	assert.Equal(t, int64(5000), first.Total)
	assert.True(t, first.DueDate.Equal(testNow.AddDate(0, 0, defaultPaymentTerm)))

	_, err = s.ProcessPayment(clinicCtx("OTHER99"), &model.Payment{InvoiceID: first.ID, Amount: 5000, Method: model.PaymentCash})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = s.ProcessPayment(ctx, &model.Payment{InvoiceID: first.ID, Amount: 5000, Method: model.PaymentCard})
	require.NoError(t, err)

	paid, err := s.GetInvoice(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, paid.Status)
	assert.Equal(t, model.PaymentCard, paid.PaymentMethod)

	payments, err := s.InvoicePayments(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	history, err := s.EntityActivities(ctx, "invoice", first.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ActionPayment, history[0].Action)
	require.NotNil(t, history[0].UserID)
	assert.Equal(t, int64(100), *history[0].UserID)
	assert.Equal(t, "Ana", history[0].UserName)
}

func TestInvoiceNumberNotReusedAfterDelete(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")
	o := mustOwner(t, s, ctx)

	first, err := s.CreateInvoice(ctx, &model.Invoice{OwnerID: o.ID})
	require.NoError(t, err)
	second, err := s.CreateInvoice(ctx, &model.Invoice{OwnerID: o.ID})
	require.NoError(t, err)
	require.NoError(t, s.DeleteInvoice(ctx, first.ID))

	third, err := s.CreateInvoice(ctx, &model.Invoice{OwnerID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, "INV-20260310-003", third.InvoiceNumber)

	_, err = s.CreateInvoice(ctx, &model.Invoice{OwnerID: o.ID, InvoiceNumber: second.InvoiceNumber})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPaymentLimitsAndDeletion(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")
	o := mustOwner(t, s, ctx)

	inv, err := s.CreateInvoice(ctx, &model.Invoice{OwnerID: o.ID, Tax: 4000, Status: model.InvoiceSent})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = s.ProcessPayment(ctx, &model.Payment{InvoiceID: inv.ID, Amount: 5000, Method: model.PaymentCash})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "outstanding balance")

	p, err := s.ProcessPayment(ctx, &model.Payment{InvoiceID: inv.ID, Amount: 4000, Method: model.PaymentCash})
	require.NoError(t, err)

	_, err = s.ProcessPayment(ctx, &model.Payment{InvoiceID: inv.ID, Amount: 100, Method: model.PaymentCash})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "accepts no payments")

	require.NoError(t, s.DeletePayment(ctx, p.ID))

	reopened, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceSent, reopened.Status)
	assert.Nil(t, reopened.PaidDate)

	history, err := s.EntityActivities(ctx, "invoice", inv.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, model.ActionDelete, history[0].Action)
	assert.Equal(t, inv.InvoiceNumber, history[0].EntityName)

	assert.ErrorIs(t, s.DeletePayment(ctx, p.ID), ErrNotFound)
}

func TestOverdueInvoices(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")
	o := mustOwner(t, s, ctx)

	_, err := s.CreateInvoice(ctx, &model.Invoice{
		OwnerID: o.ID, IssueDate: testNow.AddDate(0, -2, 0), DueDate: testNow.AddDate(0, -1, 0), Status: model.InvoiceSent,
	})
	require.NoError(t, err)
	_, err = s.CreateInvoice(ctx, &model.Invoice{OwnerID: o.ID, Status: model.InvoiceSent})
	require.NoError(t, err)

	overdue, err := s.OverdueInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, overdue, 1)
}

func TestAdjustStock(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")

	it, err := s.CreateInventoryItem(ctx, &model.InventoryItem{
		Name: "Gauze", Category: model.CategorySupplies, CurrentStock: 3, MinStock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StockLow, it.Status)

	_, err = s.AdjustStock(ctx, it.ID, -10, "used in surgery")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	it, err = s.AdjustStock(ctx, it.ID, 10, "delivery")
	require.NoError(t, err)
	assert.Equal(t, int64(13), it.CurrentStock)
	assert.Equal(t, model.StockIn, it.Status)

	low, err := s.LowStockItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	history, err := s.EntityActivities(ctx, model.EntityInventory, it.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "Stock adjusted by +10: delivery", history[0].Description)
}

func TestExpiringAndDue(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")

	soon := testNow.AddDate(0, 0, 10)
	later := testNow.AddDate(0, 0, 90)
	for _, exp := range []*time.Time{&soon, &later, nil} {
		_, err := s.CreateInventoryItem(ctx, &model.InventoryItem{
			Name: "Vaccine", Category: model.CategoryMedication, CurrentStock: 10, ExpiryDate: exp,
		})
		require.NoError(t, err)
	}

	expiring, err := s.ExpiringItems(ctx, 30)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.True(t, expiring[0].ExpiryDate.Equal(soon))

	o := mustOwner(t, s, ctx)
	p := mustPet(t, s, ctx, o.ID)
	administered := testNow.AddDate(-1, 0, 0)
	_, err = s.CreateVaccination(ctx, &model.Vaccination{
		PetID: p.ID, VaccineType: "Rabies", AdministeredDate: &administered, NextDueDate: &soon,
	})
	require.NoError(t, err)

	due, err := s.DueVaccinations(ctx, 30)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, model.VaccinationAdministered, due[0].Status)

	due, err = s.DueVaccinations(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRegisterClinicLoginAndSignup(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	clinic, admin, err := s.RegisterClinic(ctx, ClinicRegistration{
		ClinicName: "Happy Paws", AdminName: "Ana", AdminEmail: "ana@example.com", AdminPassword: "password123",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^PC\d{6}$`, clinic.ClinicCode)
	assert.Equal(t, clinic.ClinicCode, admin.ClinicCode)
	assert.Equal(t, model.RoleAdministrator, admin.Role)
	assert.Equal(t, 30, clinic.AppointmentDuration)

	u, err := s.Login(ctx, Credentials{Email: "ANA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)

	_, err = s.Login(ctx, Credentials{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, Credentials{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Signup(ctx, SignupInput{Name: "Bor", Email: "ana@example.com", Password: "password123", ClinicCode: clinic.ClinicCode})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.Signup(ctx, SignupInput{Name: "Bor", Email: "bor@example.com", Password: "password123", ClinicCode: "PC000000"})
	assert.ErrorIs(t, err, ErrUnknownClinic)

	vet, err := s.Signup(ctx, SignupInput{Name: "Bor", Email: "bor@example.com", Password: "password123", ClinicCode: clinic.ClinicCode})
	require.NoError(t, err)
	assert.Equal(t, model.RoleVeterinarian, vet.Role)
	assert.Equal(t, clinic.ClinicCode, vet.ClinicCode)

	_, err = s.ClinicByCode(ctx, "PC000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPermissions(t *testing.T) {
	s := newTestService(t)
	ctx := clinicCtx("DEMO123")

	nurse, err := s.CreateUser(ctx, NewUser{Name: "Nina", Email: "nina@example.com", Password: "password123", Role: model.RoleNurse})
	require.NoError(t, err)

	p, err := s.Permissions(ctx, nurse.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPermissions(model.RoleNurse), p)

	_, err = s.SetPermissions(ctx, nurse.ID, model.Permissions{Pets: true, Billing: true})
	require.NoError(t, err)
	p, err = s.Permissions(ctx, nurse.ID)
	require.NoError(t, err)
	assert.True(t, p.Billing)
	assert.False(t, p.Records)

	_, err = s.Permissions(clinicCtx("OTHER99"), nurse.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	self := WithActor(ctx, Actor{UserID: nurse.ID, Name: "Nina"})
	var verr *ValidationError
	assert.ErrorAs(t, s.DeleteUser(self, nurse.ID), &verr)

	require.NoError(t, s.DeleteUser(ctx, nurse.ID))
	_, err = s.GetUser(ctx, nurse.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettings(t *testing.T) {
	s := newTestService(t)

	_, err := store.CreateClinic(context.Background(), s.DB, model.NewClinic("DEMO123", "Demo"))
	require.NoError(t, err)
	ctx := clinicCtx("DEMO123")

	c, err := s.Settings(ctx)
	require.NoError(t, err)
	c.ClinicName = "Demo Clinic"
	c.Timezone = "Mars/Olympus"
	_, err = s.UpdateSettings(ctx, c)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	c.Timezone = "UTC"
	c.AppointmentDuration = 45
	c.ClinicCode = "HIJACK"
	updated, err := s.UpdateSettings(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "DEMO123", updated.ClinicCode)
	assert.Equal(t, "Demo Clinic", updated.ClinicName)

	_, err = s.Settings(clinicCtx("OTHER99"))
	assert.ErrorIs(t, err, ErrUnknownClinic)

	assert.Equal(t, 45, s.defaultDuration(ctx, "DEMO123"))
}

func TestRecentActivitiesScopedAndLimited(t *testing.T) {
	s := newTestService(t)
	demo := clinicCtx("DEMO123")

	for range 12 {
		mustOwner(t, s, demo)
	}
	mustOwner(t, s, clinicCtx("OTHER99"))

	recent, err := s.RecentActivities(demo, 0)
	require.NoError(t, err)
	assert.Len(t, recent, defaultActivityLimit)
	for _, a := range recent {
		assert.Equal(t, "DEMO123", a.ClinicCode)
	}

	other, err := s.RecentActivities(clinicCtx("OTHER99"), 50)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	_, err = s.ActivitiesSince(demo, time.Time{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
