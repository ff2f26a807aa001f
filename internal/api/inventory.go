package api

import (
	"net/http"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
)

// defaultExpiryWindow is the look-ahead of /expiring and /due in days.
const defaultExpiryWindow = 30

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	Svc *service.Service
	resource[model.InventoryItem]
}

func newInventoryHandler(svc *service.Service) *InventoryHandler {
	return &InventoryHandler{Svc: svc, resource: resource[model.InventoryItem]{
		kind:   "inventory item",
		get:    svc.GetInventoryItem,
		create: svc.CreateInventoryItem,
		update: svc.UpdateInventoryItem,
		remove: svc.DeleteInventoryItem,
	}}
}

// List handles GET /api/inventory?category=.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.ListInventory(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err, "list inventory")
		return
	}
	list(w, items)
}

// LowStock handles GET /api/inventory/low-stock.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.LowStockItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list inventory")
		return
	}
	list(w, items)
}

// Expiring handles GET /api/inventory/expiring?days=30.
func (h *InventoryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", defaultExpiryWindow)
	if !ok {
		return
	}

	items, err := h.Svc.ExpiringItems(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err, "list inventory")
		return
	}
	list(w, items)
}

type adjustRequest struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason"`
}

// Adjust handles POST /api/inventory/{id}/adjust.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "inventory item")
	if !ok {
		return
	}

	var req adjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it, err := h.Svc.AdjustStock(r.Context(), id, req.Quantity, req.Reason)
	if err != nil {
		writeServiceError(w, r, err, "adjust stock")
		return
	}
	jsonResponse(w, http.StatusOK, it)
}
