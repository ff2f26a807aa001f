package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// ProcessPayment records a payment against an invoice of the clinic. The
// invoice becomes PAID once its payments cover the total.
func (s *Service) ProcessPayment(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	clinic, err := clinicAndValidate(ctx, p)
	if err != nil {
		return nil, err
	}

	inv, err := store.GetInvoice(ctx, s.DB, clinic, p.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invalidf("invoice_id: no record with id %d", p.InvoiceID)
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = s.now()
	}

	created, err := store.RecordPayment(ctx, s.DB, p)
	switch {
	case errors.Is(err, store.ErrInvoiceSettled):
		return nil, invalidf("invoice %s is %s and accepts no payments", inv.InvoiceNumber, strings.ToLower(inv.Status))
	case errors.Is(err, store.ErrOverpayment):
		return nil, invalidf("amount exceeds the outstanding balance of invoice %s", inv.InvoiceNumber)
	case err != nil:
		return nil, err
	}

	slog.InfoContext(ctx, "payment processed", "invoice", inv.InvoiceNumber, "amount", created.Amount,
		"method", created.Method)
	s.record(ctx, model.ActionPayment, model.EntityInvoice, inv.ID, inv.InvoiceNumber,
		fmt.Sprintf("Payment of %s received (%s)", formatCents(created.Amount), created.Method))
	return created, nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "payment", id, store.GetPayment)
}

// InvoicePayments returns the payments recorded against one invoice.
func (s *Service) InvoicePayments(ctx context.Context, invoiceID int64) ([]model.Payment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := load(ctx, s.DB, clinic, "invoice", invoiceID, store.GetInvoice); err != nil {
		return nil, err
	}
	return store.ListPayments(ctx, s.DB, clinic, invoiceID, time.Time{}, time.Time{})
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	p, err := load(ctx, s.DB, clinic, "payment", id, store.GetPayment)
	if err != nil {
		return err
	}
	inv, err := load(ctx, s.DB, clinic, "invoice", p.InvoiceID, store.GetInvoice)
	if err != nil {
		return err
	}
	if err := store.DeletePayment(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	slog.WarnContext(ctx, "payment deleted", "payment", id, "invoice", inv.InvoiceNumber, "amount", p.Amount)
	s.record(ctx, model.ActionDelete, model.EntityInvoice, p.InvoiceID, inv.InvoiceNumber,
		fmt.Sprintf("Payment of %s removed", formatCents(p.Amount)))
	return nil
}
