package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoffee/CampusCoffeeGo/internal/service"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/httputil"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/pagination"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for creating a review. The
// author is the authenticated user from the X-User-ID header.
type CreateReviewRequest struct {
	PosID string `json:"pos_id" validate:"required,uuid"`
	Body  string `json:"body" validate:"required,min=1,max=2000"`
}

// UpdateReviewRequest is the JSON request body for updating a review.
type UpdateReviewRequest struct {
	PosID string `json:"pos_id" validate:"required,uuid"`
	Body  string `json:"body" validate:"required,min=1,max=2000"`
}

// --- Handlers ---

// CreateReview handles POST /api/v1/reviews.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	authorID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.Upsert(r.Context(), &service.UpsertReviewInput{
		PosID:    req.PosID,
		AuthorID: authorID,
		Body:     req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// UpdateReview handles PUT /api/v1/reviews/{id}.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	authorID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	var req UpdateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.Upsert(r.Context(), &service.UpsertReviewInput{
		ID:       id,
		PosID:    req.PosID,
		AuthorID: authorID,
		Body:     req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// GetReview handles GET /api/v1/reviews/{id}.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ApproveReview handles POST /api/v1/reviews/{id}/approve. The approver is
// the authenticated user. Repeat approvals by the same user keep counting:
// approvals are trusted moderation actions and approver identity is not
// recorded per review.
func (h *ReviewHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	approverID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	review, err := h.service.Approve(r.Context(), id, approverID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ListPosReviews handles GET /api/v1/pos/{id}/reviews. The approved query
// parameter defaults to true (the public listing); the moderation queue
// passes approved=false explicitly.
func (h *ReviewHandler) ListPosReviews(w http.ResponseWriter, r *http.Request) {
	posID := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, posID); !ok {
		return
	}

	approved := true
	if v := r.URL.Query().Get("approved"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "approved must be a boolean"},
			})
			return
		}
		approved = parsed
	}

	params := pagination.FromRequest(r)

	reviews, total, err := h.service.FilterByApproval(r.Context(), posID, approved, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(reviews, total, params))
}
