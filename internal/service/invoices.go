package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// defaultPaymentTerm is the number of days until an invoice falls due.
const defaultPaymentTerm = 30

// InvoiceFilter narrows ListInvoices. Zero values are ignored.
type InvoiceFilter = store.InvoiceFilter

func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter) ([]model.Invoice, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListInvoices(ctx, s.DB, clinic, f)
}

// OverdueInvoices returns invoices due before today that are neither paid nor cancelled.
func (s *Service) OverdueInvoices(ctx context.Context) ([]model.Invoice, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	all, err := store.ListInvoices(ctx, s.DB, clinic, store.InvoiceFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location(ctx, clinic))
	return slices.DeleteFunc(all, func(inv model.Invoice) bool { return !inv.Overdue(now) }), nil
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "invoice", id, store.GetInvoice)
}

// prepareInvoice checks references, fills in dates and recalculates totals.
func (s *Service) prepareInvoice(ctx context.Context, clinic string, inv *model.Invoice) error {
	inv.PetID = nilIfZero(inv.PetID)
	inv.VeterinarianID = nilIfZero(inv.VeterinarianID)
	inv.AppointmentID = nilIfZero(inv.AppointmentID)

	if err := reference(ctx, s.DB, clinic, "owner_id", inv.OwnerID, store.GetOwner); err != nil {
		return err
	}
	if err := optionalReference(ctx, s.DB, clinic, "pet_id", inv.PetID, store.GetPet); err != nil {
		return err
	}
	if err := optionalReference(ctx, s.DB, clinic, "veterinarian_id", inv.VeterinarianID, store.GetVeterinarian); err != nil {
		return err
	}
	if err := optionalReference(ctx, s.DB, clinic, "appointment_id", inv.AppointmentID, store.GetAppointment); err != nil {
		return err
	}

	if inv.IssueDate.IsZero() {
		inv.IssueDate = s.now()
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssueDate.AddDate(0, 0, defaultPaymentTerm)
	}
	if inv.DueDate.Before(model.StartOfDay(inv.IssueDate)) {
		return invalidf("due_date must not be before issue_date")
	}

	inv.Recalculate()
	if inv.Total < 0 {
		return invalidf("discount exceeds subtotal and tax")
	}
	return nil
}

// invoicePrefix returns INV-yyyymmdd- for today in the clinic's timezone.
func (s *Service) invoicePrefix(ctx context.Context, clinic string) string {
	return "INV-" + s.now().In(s.location(ctx, clinic)).Format("20060102") + "-"
}

func (s *Service) CreateInvoice(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	clinic, err := clinicAndValidate(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := s.prepareInvoice(ctx, clinic, inv); err != nil {
		return nil, err
	}

	created, err := store.CreateInvoice(ctx, s.DB, inv, s.invoicePrefix(ctx, clinic))
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invoice created", "invoice", created.InvoiceNumber, "total", created.Total)
	s.record(ctx, model.ActionCreate, model.EntityInvoice, created.ID, created.InvoiceNumber,
		fmt.Sprintf("Invoice issued for %s", formatCents(created.Total)))
	return created, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, id int64, inv *model.Invoice) (*model.Invoice, error) {
	clinic, err := clinicAndValidate(ctx, inv)
	if err != nil {
		return nil, err
	}

	existing, err := load(ctx, s.DB, clinic, "invoice", id, store.GetInvoice)
	if err != nil {
		return nil, err
	}
	if err := s.prepareInvoice(ctx, clinic, inv); err != nil {
		return nil, err
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = existing.InvoiceNumber
	}
	if inv.Status == "" {
		inv.Status = existing.Status
	}
	if inv.Status == model.InvoicePaid && inv.PaidDate == nil {
		if existing.PaidDate != nil {
			inv.PaidDate = existing.PaidDate
		} else {
			now := s.now()
			inv.PaidDate = &now
		}
	}

	inv.ID = id
	if err := store.UpdateInvoice(ctx, s.DB, clinic, inv); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityInvoice, id, inv.InvoiceNumber, "Invoice updated")
	return load(ctx, s.DB, clinic, "invoice", id, store.GetInvoice)
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	inv, err := load(ctx, s.DB, clinic, "invoice", id, store.GetInvoice)
	if err != nil {
		return err
	}
	if err := store.DeleteInvoice(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "invoice deleted", "invoice", inv.InvoiceNumber)
	s.record(ctx, model.ActionDelete, model.EntityInvoice, id, inv.InvoiceNumber, "Invoice removed")
	return nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
