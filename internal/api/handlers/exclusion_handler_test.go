package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/service"
)

func exclusionRouter(svc ExclusionService) http.Handler {
	h := NewExclusionHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/admin/exclusion-periods", h.List)
	r.Post("/admin/exclusion-periods", h.Create)
	r.Put("/admin/exclusion-periods/{id}", h.Update)
	r.Delete("/admin/exclusion-periods/{id}", h.Delete)
	return r
}

func TestExclusionList_Empty(t *testing.T) {
	rec := do(exclusionRouter(&mockExclusionService{}), http.MethodGet, "/admin/exclusion-periods", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeMap(t, rec)["exclusion_periods"]; got == nil {
		t.Fatalf("expected an empty array, got %s", rec.Body)
	}
}

func TestExclusionCreate(t *testing.T) {
	body := `{"name":"Holidays","start_date":"2025-12-20","end_date":"2026-01-05","is_recurring":true}`
	rec := do(exclusionRouter(&mockExclusionService{}), http.MethodPost, "/admin/exclusion-periods", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
}

func TestExclusionErrors(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name   string
		method string
		path   string
		err    error
		status int
		key    string
	}{
		{"bad range", http.MethodPost, "/admin/exclusion-periods", service.ErrPeriodDateInvalid, http.StatusBadRequest, "invalid_date_range"},
		{"invalid", http.MethodPost, "/admin/exclusion-periods", fmt.Errorf("%w: name", service.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{"update missing", http.MethodPut, "/admin/exclusion-periods/" + id, service.ErrPeriodNotFound, http.StatusNotFound, "period_not_found"},
		{"delete missing", http.MethodDelete, "/admin/exclusion-periods/" + id, service.ErrPeriodNotFound, http.StatusNotFound, "period_not_found"},
		{"bad id", http.MethodDelete, "/admin/exclusion-periods/42", nil, http.StatusBadRequest, "invalid_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"name":"x","start_date":"2025-06-01","end_date":"2025-06-02"}`
			rec := do(exclusionRouter(&mockExclusionService{err: tt.err}), tt.method, tt.path, body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeMap(t, rec)["error"]; got != tt.key {
				t.Fatalf("error = %v, want %s", got, tt.key)
			}
		})
	}
}

func TestExclusionDelete(t *testing.T) {
	svc := &mockExclusionService{}
	id := uuid.New()
	rec := do(exclusionRouter(svc), http.MethodDelete, "/admin/exclusion-periods/"+id.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.deleted != id {
		t.Fatalf("deleted = %s", svc.deleted)
	}
}
