package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/internal/service"
)

type ExclusionService interface {
	List(ctx context.Context) ([]models.ExclusionPeriod, error)
	Create(ctx context.Context, req models.ExclusionPeriodRequest) (*models.ExclusionPeriod, error)
	Update(ctx context.Context, id uuid.UUID, req models.ExclusionPeriodRequest) (*models.ExclusionPeriod, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ExclusionHandler struct {
	service ExclusionService
	logger  *zap.Logger
}

func NewExclusionHandler(svc ExclusionService, logger *zap.Logger) *ExclusionHandler {
	return &ExclusionHandler{service: svc, logger: logger}
}

// List handles GET /admin/exclusion-periods
func (h *ExclusionHandler) List(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list exclusion periods failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed_list_periods")
		return
	}
	if periods == nil {
		periods = []models.ExclusionPeriod{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exclusion_periods": periods})
}

// Create handles POST /admin/exclusion-periods
func (h *ExclusionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ExclusionPeriodRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /admin/exclusion-periods/{id}
func (h *ExclusionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var req models.ExclusionPeriodRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /admin/exclusion-periods/{id}
func (h *ExclusionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExclusionHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		writeError(w, http.StatusNotFound, "period_not_found")
	case errors.Is(err, service.ErrPeriodDateInvalid):
		writeError(w, http.StatusBadRequest, "invalid_date_range")
	case errors.Is(err, service.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "detail": err.Error()})
	default:
		h.logger.Error("exclusion period write failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
