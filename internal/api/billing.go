package api

import (
	"net/http"
	"strings"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
)

// InvoicesHandler handles invoice endpoints.
type InvoicesHandler struct {
	Svc *service.Service
	resource[model.Invoice]
}

func newInvoicesHandler(svc *service.Service) *InvoicesHandler {
	return &InvoicesHandler{Svc: svc, resource: resource[model.Invoice]{
		kind:   "invoice",
		get:    svc.GetInvoice,
		create: svc.CreateInvoice,
		update: svc.UpdateInvoice,
		remove: svc.DeleteInvoice,
	}}
}

// List handles GET /api/invoices?status=&owner_id=&pet_id=.
func (h *InvoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	f := service.InvoiceFilter{Status: strings.ToUpper(r.URL.Query().Get("status"))}
	var ok bool
	if f.OwnerID, ok = queryInt64(w, r, "owner_id"); !ok {
		return
	}
	if f.PetID, ok = queryInt64(w, r, "pet_id"); !ok {
		return
	}

	invoices, err := h.Svc.ListInvoices(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, "list invoices")
		return
	}
	list(w, invoices)
}

// Overdue handles GET /api/invoices/overdue.
func (h *InvoicesHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Svc.OverdueInvoices(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list invoices")
		return
	}
	list(w, invoices)
}

// PaymentsHandler handles payment endpoints.
type PaymentsHandler struct {
	Svc *service.Service
}

// Process handles POST /api/payments/process.
func (h *PaymentsHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req model.Payment
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Svc.ProcessPayment(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "process payment")
		return
	}
	jsonResponse(w, http.StatusCreated, p)
}

// Get handles GET /api/payments/{id}.
func (h *PaymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "payment")
	if !ok {
		return
	}

	p, err := h.Svc.GetPayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get payment")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// ForInvoice handles GET /api/payments/invoice/{invoiceID}.
func (h *PaymentsHandler) ForInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invoiceID", "invoice")
	if !ok {
		return
	}

	payments, err := h.Svc.InvoicePayments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "list payments")
		return
	}
	list(w, payments)
}

// Delete handles DELETE /api/payments/{id}.
func (h *PaymentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "payment")
	if !ok {
		return
	}

	if err := h.Svc.DeletePayment(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete payment")
		return
	}
	message(w, "payment deleted")
}
