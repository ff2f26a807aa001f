package model

import "time"

// Invoice bills an owner. All amounts are in cents.
type Invoice struct {
	ID int64 `json:"id"`
	Tenancy
	InvoiceNumber  string        `json:"invoice_number"`
	OwnerID        int64         `json:"owner_id" validate:"required"`
	PetID          *int64        `json:"pet_id,omitempty"`
	VeterinarianID *int64        `json:"veterinarian_id,omitempty"`
	AppointmentID  *int64        `json:"appointment_id,omitempty"`
	IssueDate      time.Time     `json:"issue_date"`
	DueDate        time.Time     `json:"due_date"`
	PaidDate       *time.Time    `json:"paid_date,omitempty"`
	Items          []InvoiceItem `json:"items" validate:"dive"`
	Subtotal       int64         `json:"subtotal"`
	Tax            int64         `json:"tax" validate:"gte=0"`
	Discount       int64         `json:"discount" validate:"gte=0"`
	Total          int64         `json:"total"`
	Status         string        `json:"status" validate:"omitempty,oneof=DRAFT SENT PAID OVERDUE CANCELLED"`
	PaymentMethod  string        `json:"payment_method,omitempty" validate:"omitempty,oneof=CASH CARD CHECK INSURANCE ONLINE"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// InvoiceItem is a line on an invoice.
type InvoiceItem struct {
	ID          int64  `json:"id"`
	InvoiceID   int64  `json:"invoice_id"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"oneof=CONSULTATION PROCEDURE MEDICATION SUPPLIES BOARDING GROOMING OTHER"`
	Quantity    int64  `json:"quantity" validate:"gt=0"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0"`
	Total       int64  `json:"total"`
}

// Invoice statuses.
const (
	InvoiceDraft     = "DRAFT"
	InvoiceSent      = "SENT"
	InvoicePaid      = "PAID"
	InvoiceOverdue   = "OVERDUE"
	InvoiceCancelled = "CANCELLED"
)

// Invoice item categories.
const (
	ItemConsultation = "CONSULTATION"
	ItemProcedure    = "PROCEDURE"
	ItemMedication   = "MEDICATION"
	ItemSupplies     = "SUPPLIES"
	ItemBoarding     = "BOARDING"
	ItemGrooming     = "GROOMING"
	ItemOther        = "OTHER"
)

// Payment methods.
const (
	PaymentCash      = "CASH"
	PaymentCard      = "CARD"
	PaymentCheck     = "CHECK"
	PaymentInsurance = "INSURANCE"
	PaymentOnline    = "ONLINE"
)

// Recalculate derives line totals, the subtotal and the total.
func (inv *Invoice) Recalculate() {
	var subtotal int64
	for i := range inv.Items {
		inv.Items[i].Total = inv.Items[i].Quantity * inv.Items[i].UnitPrice
		subtotal += inv.Items[i].Total
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal + inv.Tax - inv.Discount
}

// Overdue reports whether the invoice is past due on the given day.
func (inv *Invoice) Overdue(now time.Time) bool {
	if inv.Status == InvoicePaid || inv.Status == InvoiceCancelled {
		return false
	}
	return inv.DueDate.Before(StartOfDay(now))
}
