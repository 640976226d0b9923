// Package api serves the JSON bill API consumed by the remote store client.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/pigeonworks-llc/billed/internal/store"
)

// BillsHandler handles bill-related API endpoints.
type BillsHandler struct {
	store *store.Store
}

// NewBillsHandler creates a new BillsHandler.
func NewBillsHandler(s *store.Store) *BillsHandler {
	return &BillsHandler{store: s}
}

// Routes mounts the bill endpoints on r.
func (h *BillsHandler) Routes(r chi.Router) {
	r.Route("/bills", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})
}

// BillsListResponse represents the response for GET /api/v1/bills.
type BillsListResponse struct {
	Bills []models.Bill `json:"bills"`
}

// BillResponse wraps a single bill.
type BillResponse struct {
	Bill *models.Bill `json:"bill"`
}

// List handles GET /api/v1/bills with an optional email filter.
func (h *BillsHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.store.ListBills(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		slog.Error("failed to list bills", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list bills")
		return
	}

	writeJSON(w, http.StatusOK, BillsListResponse{Bills: bills})
}

// Get handles GET /api/v1/bills/{id}.
func (h *BillsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bill, err := h.store.GetBill(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Failed to get bill")
		return
	}

	writeJSON(w, http.StatusOK, BillResponse{Bill: bill})
}

// Create handles POST /api/v1/bills.
func (h *BillsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	bill, err := h.store.CreateBill(r.Context(), &req)
	if err != nil {
		slog.Error("failed to create bill", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to create bill")
		return
	}

	writeJSON(w, http.StatusCreated, BillResponse{Bill: bill})
}

// UpdateStatus handles PATCH /api/v1/bills/{id}.
func (h *BillsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateBillStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	if !req.Status.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid status")
		return
	}

	bill, err := h.store.UpdateBillStatus(chi.URLParam(r, "id"), &req)
	if err != nil {
		writeStoreError(w, err, "Failed to update bill")
		return
	}

	writeJSON(w, http.StatusOK, BillResponse{Bill: bill})
}

// Delete handles DELETE /api/v1/bills/{id}.
func (h *BillsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBill(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err, "Failed to delete bill")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeStoreError(w http.ResponseWriter, err error, description string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Bill not found")
	case errors.Is(err, store.ErrInvalidID):
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid bill ID")
	default:
		slog.Error(description, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", description)
	}
}
