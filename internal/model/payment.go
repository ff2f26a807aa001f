package model

import "time"

// Payment is money received against an invoice, in cents.
type Payment struct {
	ID int64 `json:"id"`
	Tenancy
	InvoiceID     int64     `json:"invoice_id" validate:"required"`
	Amount        int64     `json:"amount" validate:"gt=0"`
	Method        string    `json:"method" validate:"oneof=CASH CARD CHECK INSURANCE ONLINE"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
