package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const invoiceColumns = `id, clinic_code, invoice_number, owner_id, pet_id, veterinarian_id, appointment_id,
	issue_date, due_date, paid_date, subtotal, tax, discount, total, status, payment_method, notes,
	created_at, updated_at`

func scanInvoice(s scanner) (model.Invoice, error) {
	var inv model.Invoice
	err := s.Scan(&inv.ID, &inv.ClinicCode, &inv.InvoiceNumber, &inv.OwnerID, &inv.PetID,
		&inv.VeterinarianID, &inv.AppointmentID, &inv.IssueDate, &inv.DueDate, &inv.PaidDate,
		&inv.Subtotal, &inv.Tax, &inv.Discount, &inv.Total, &inv.Status, &inv.PaymentMethod,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func scanInvoiceItem(s scanner) (model.InvoiceItem, error) {
	var it model.InvoiceItem
	err := s.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Category, &it.Quantity, &it.UnitPrice, &it.Total)
	return it, err
}

// InvoiceFilter narrows ListInvoices. Zero values are ignored.
type InvoiceFilter struct {
	Status  string
	OwnerID int64
	PetID   int64
}

// CreateInvoice stamps and inserts a new invoice with its items.
// Totals must already be calculated.
//
// An invoice without a number is numbered numberPrefix followed by the next
// free three-digit sequence for that prefix in the clinic. The sequence is
// read in the insert transaction, so deleted invoices never free a number
// that is still taken. A number already used by the clinic is ErrDuplicate.
func CreateInvoice(ctx context.Context, db *sql.DB, inv *model.Invoice, numberPrefix string) (*model.Invoice, error) {
	if err := tenant.Stamp(ctx, inv); err != nil {
		return nil, err
	}
	if inv.Status == "" {
		inv.Status = model.InvoiceDraft
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if inv.InvoiceNumber == "" {
		seq, err := lastInvoiceSequence(ctx, tx, inv.ClinicCode, numberPrefix)
		if err != nil {
			return nil, err
		}
		inv.InvoiceNumber = fmt.Sprintf("%s%03d", numberPrefix, seq+1)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO invoices (clinic_code, invoice_number, owner_id, pet_id, veterinarian_id, appointment_id,
		     issue_date, due_date, paid_date, subtotal, tax, discount, total, status, payment_method, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ClinicCode, inv.InvoiceNumber, inv.OwnerID, inv.PetID, inv.VeterinarianID, inv.AppointmentID,
		dbTime(inv.IssueDate), dbTime(inv.DueDate), dbTimePtr(inv.PaidDate),
		inv.Subtotal, inv.Tax, inv.Discount, inv.Total, inv.Status, inv.PaymentMethod, inv.Notes,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("invoice number %s: %w", inv.InvoiceNumber, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting invoice id: %w", err)
	}

	if err := insertInvoiceItems(ctx, tx, id, inv.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice: %w", err)
	}

	return GetInvoice(ctx, db, inv.ClinicCode, id)
}

func insertInvoiceItems(ctx context.Context, tx *sql.Tx, invoiceID int64, items []model.InvoiceItem) error {
	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoice_items (invoice_id, description, category, quantity, unit_price, total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			invoiceID, it.Description, it.Category, it.Quantity, it.UnitPrice, it.Total,
		)
		if err != nil {
			return fmt.Errorf("creating invoice item: %w", err)
		}
	}
	return nil
}

// GetInvoice returns an invoice of the clinic with its items, or nil.
func GetInvoice(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Invoice, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	inv, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	if inv == nil {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, invoice_id, description, category, quantity, unit_price, total
		 FROM invoice_items WHERE invoice_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting invoice items: %w", err)
	}
	inv.Items, err = collect(rows, scanInvoiceItem)
	if err != nil {
		return nil, fmt.Errorf("scanning invoice item: %w", err)
	}
	if inv.Items == nil {
		inv.Items = []model.InvoiceItem{}
	}
	return inv, nil
}

// ListInvoices returns the clinic's invoices with their items, newest first.
func ListInvoices(ctx context.Context, db *sql.DB, clinicCode string, f InvoiceFilter) ([]model.Invoice, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE clinic_code = ?`
	args := []any{clinicCode}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.OwnerID > 0 {
		query += ` AND owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if f.PetID > 0 {
		query += ` AND pet_id = ?`
		args = append(args, f.PetID)
	}
	query += ` ORDER BY issue_date DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	invoices, err := collect(rows, scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	rows, err = db.QueryContext(ctx,
		`SELECT it.id, it.invoice_id, it.description, it.category, it.quantity, it.unit_price, it.total
		 FROM invoice_items it
		 JOIN invoices inv ON inv.id = it.invoice_id
		 WHERE inv.clinic_code = ?
		 ORDER BY it.id`, clinicCode,
	)
	if err != nil {
		return nil, fmt.Errorf("listing invoice items: %w", err)
	}
	items, err := collect(rows, scanInvoiceItem)
	if err != nil {
		return nil, fmt.Errorf("scanning invoice item: %w", err)
	}

	byInvoice := make(map[int64][]model.InvoiceItem)
	for _, it := range items {
		byInvoice[it.InvoiceID] = append(byInvoice[it.InvoiceID], it)
	}
	for i := range invoices {
		invoices[i].Items = byInvoice[invoices[i].ID]
		if invoices[i].Items == nil {
			invoices[i].Items = []model.InvoiceItem{}
		}
	}
	return invoices, nil
}

// UpdateInvoice replaces an invoice's fields and items.
// Totals must already be calculated.
func UpdateInvoice(ctx context.Context, db *sql.DB, clinicCode string, inv *model.Invoice) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE invoices SET invoice_number = ?, owner_id = ?, pet_id = ?, veterinarian_id = ?, appointment_id = ?,
		     issue_date = ?, due_date = ?, paid_date = ?, subtotal = ?, tax = ?, discount = ?, total = ?,
		     status = ?, payment_method = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ?`,
		inv.InvoiceNumber, inv.OwnerID, inv.PetID, inv.VeterinarianID, inv.AppointmentID,
		dbTime(inv.IssueDate), dbTime(inv.DueDate), dbTimePtr(inv.PaidDate),
		inv.Subtotal, inv.Tax, inv.Discount, inv.Total, inv.Status, inv.PaymentMethod, inv.Notes,
		inv.ID, clinicCode,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invoice number %s: %w", inv.InvoiceNumber, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}
	if err := mustAffect(result, "updating invoice"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, inv.ID); err != nil {
		return fmt.Errorf("clearing invoice items: %w", err)
	}
	if err := insertInvoiceItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing invoice: %w", err)
	}
	return nil
}

// DeleteInvoice deletes an invoice together with its items and payments.
func DeleteInvoice(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM invoices WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	return mustAffect(result, "deleting invoice")
}

// lastInvoiceSequence returns the highest numeric suffix among the clinic's
// invoice numbers starting with prefix, or 0.
func lastInvoiceSequence(ctx context.Context, tx *sql.Tx, clinicCode, prefix string) (int, error) {
	var seq int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(CAST(SUBSTR(invoice_number, ?) AS INTEGER)), 0)
		 FROM invoices WHERE clinic_code = ? AND SUBSTR(invoice_number, 1, ?) = ?`,
		len(prefix)+1, clinicCode, len(prefix), prefix,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("reading invoice sequence: %w", err)
	}
	return seq, nil
}
