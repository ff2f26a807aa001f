package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

var (
	// ErrInvoiceSettled is returned for a payment against a paid or cancelled invoice.
	ErrInvoiceSettled = errors.New("invoice does not accept payments")

	// ErrOverpayment is returned for a payment larger than the outstanding balance.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")
)

const paymentColumns = `id, clinic_code, invoice_id, amount, method, transaction_id, paid_at, notes, created_at`

func scanPayment(s scanner) (model.Payment, error) {
	var p model.Payment
	err := s.Scan(&p.ID, &p.ClinicCode, &p.InvoiceID, &p.Amount, &p.Method, &p.TransactionID,
		&p.PaidAt, &p.Notes, &p.CreatedAt)
	return p, err
}

// RecordPayment stamps and inserts a payment. When the payments on the
// invoice reach its total, the invoice is marked paid in the same transaction.
// Returns ErrNotFound if the invoice does not belong to the payment's clinic,
// ErrInvoiceSettled if it is paid or cancelled and ErrOverpayment if the
// amount is more than what is still owed.
func RecordPayment(ctx context.Context, db *sql.DB, p *model.Payment) (*model.Payment, error) {
	if err := tenant.Stamp(ctx, p); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT total, status FROM invoices WHERE id = ? AND clinic_code = ?`, p.InvoiceID, p.ClinicCode,
	).Scan(&total, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recording payment: invoice %d: %w", p.InvoiceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("checking invoice: %w", err)
	}
	if status == model.InvoicePaid || status == model.InvoiceCancelled {
		return nil, fmt.Errorf("invoice %d is %s: %w", p.InvoiceID, status, ErrInvoiceSettled)
	}

	paid, err := sumPayments(ctx, tx, p.InvoiceID)
	if err != nil {
		return nil, err
	}
	if paid+p.Amount > total {
		return nil, fmt.Errorf("invoice %d owes %d: %w", p.InvoiceID, total-paid, ErrOverpayment)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO payments (clinic_code, invoice_id, amount, method, transaction_id, paid_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ClinicCode, p.InvoiceID, p.Amount, p.Method, p.TransactionID, dbTime(p.PaidAt), p.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting payment id: %w", err)
	}

	if paid+p.Amount >= total {
		_, err = tx.ExecContext(ctx,
			`UPDATE invoices SET status = ?, paid_date = ?, payment_method = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND clinic_code = ?`,
			model.InvoicePaid, dbTime(p.PaidAt), p.Method, p.InvoiceID, p.ClinicCode,
		)
		if err != nil {
			return nil, fmt.Errorf("marking invoice paid: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}

	return GetPayment(ctx, db, p.ClinicCode, id)
}

func sumPayments(ctx context.Context, tx *sql.Tx, invoiceID int64) (int64, error) {
	var paid int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?`, invoiceID,
	).Scan(&paid)
	if err != nil {
		return 0, fmt.Errorf("summing payments: %w", err)
	}
	return paid, nil
}

// GetPayment returns a payment of the clinic by ID, or nil.
func GetPayment(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Payment, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	p, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanPayment)
	if err != nil {
		return nil, fmt.Errorf("getting payment: %w", err)
	}
	return p, nil
}

// ListPayments returns the clinic's payments, optionally for one invoice or
// within [from, to). Zero values are ignored.
func ListPayments(ctx context.Context, db *sql.DB, clinicCode string, invoiceID int64, from, to time.Time) ([]model.Payment, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE clinic_code = ?`
	args := []any{clinicCode}
	if invoiceID > 0 {
		query += ` AND invoice_id = ?`
		args = append(args, invoiceID)
	}
	if !from.IsZero() {
		query += ` AND paid_at >= ?`
		args = append(args, dbTime(from))
	}
	if !to.IsZero() {
		query += ` AND paid_at < ?`
		args = append(args, dbTime(to))
	}
	query += ` ORDER BY paid_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	payments, err := collect(rows, scanPayment)
	if err != nil {
		return nil, fmt.Errorf("scanning payment: %w", err)
	}
	return payments, nil
}

// DeletePayment deletes a payment. A paid invoice whose remaining payments
// no longer cover its total goes back to SENT without a paid date, in the
// same transaction.
func DeletePayment(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var invoiceID int64
	err = tx.QueryRowContext(ctx,
		`SELECT invoice_id FROM payments WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	).Scan(&invoiceID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("deleting payment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("finding payment: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM payments WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}
	if err := mustAffect(result, "deleting payment"); err != nil {
		return err
	}

	paid, err := sumPayments(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE invoices SET status = ?, paid_date = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ? AND status = ? AND total > ?`,
		model.InvoiceSent, invoiceID, clinicCode, model.InvoicePaid, paid,
	)
	if err != nil {
		return fmt.Errorf("reopening invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing payment deletion: %w", err)
	}
	return nil
}
