package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoffee/CampusCoffeeGo/internal/service"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/httputil"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/pagination"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/validator"
)

// PosHandler handles HTTP requests for POS directory endpoints.
type PosHandler struct {
	service *service.PosService
	logger  *slog.Logger
}

// NewPosHandler creates a new POS HTTP handler.
func NewPosHandler(svc *service.PosService, logger *slog.Logger) *PosHandler {
	return &PosHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PosRequest is the JSON request body for creating or updating a POS.
type PosRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Type        string `json:"type" validate:"required,oneof=CAFE BAKERY VENDING_MACHINE"`
	Street      string `json:"street" validate:"max=200"`
	HouseNumber string `json:"house_number" validate:"max=20"`
	PostalCode  string `json:"postal_code" validate:"max=20"`
	City        string `json:"city" validate:"max=100"`
}

// --- Handlers ---

// CreatePos handles POST /api/v1/pos.
func (h *PosHandler) CreatePos(w http.ResponseWriter, r *http.Request) {
	var req PosRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	pos, err := h.service.CreatePos(r.Context(), &service.CreatePosInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: pos})
}

// GetPos handles GET /api/v1/pos/{id}.
func (h *PosHandler) GetPos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	pos, err := h.service.GetPos(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pos})
}

// GetPosBySlug handles GET /api/v1/pos/slug/{slug}.
func (h *PosHandler) GetPosBySlug(w http.ResponseWriter, r *http.Request) {
	posSlug := chi.URLParam(r, "slug")
	if posSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "pos slug is required"},
		})
		return
	}

	pos, err := h.service.GetPosBySlug(r.Context(), posSlug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pos})
}

// UpdatePos handles PUT /api/v1/pos/{id}.
func (h *PosHandler) UpdatePos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	var req PosRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	pos, err := h.service.UpdatePos(r.Context(), id, &service.UpdatePosInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pos})
}

// ListPos handles GET /api/v1/pos.
func (h *PosHandler) ListPos(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	entries, total, err := h.service.ListPos(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(entries, total, params))
}
