package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/fulfillment"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/internal/service"
	"github.com/Cheertaboi/gift-voucher-service/internal/voucher"
)

// VoucherService is the part of service.VoucherService the handlers use.
type VoucherService interface {
	Check(ctx context.Context, code string) (*models.RedemptionView, error)
	Redeem(ctx context.Context, code string) (*models.RedemptionView, error)
	CreateManual(ctx context.Context, req models.CreateVoucherRequest) (*models.Voucher, error)
	Resend(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
}

type VoucherHandler struct {
	service VoucherService
	logger  *zap.Logger
}

func NewVoucherHandler(svc VoucherService, logger *zap.Logger) *VoucherHandler {
	return &VoucherHandler{service: svc, logger: logger}
}

// VoucherResponse is what operators see for a voucher they created or resent.
type VoucherResponse struct {
	ID             uuid.UUID            `json:"id"`
	Voucher        models.PublicFields  `json:"voucher"`
	RecipientEmail string               `json:"recipient_email,omitempty"`
	PurchaserEmail string               `json:"purchaser_email"`
	CreatedOnline  bool                 `json:"created_online"`
	DeliveryState  models.DeliveryState `json:"delivery_state"`
	CreatedAt      time.Time            `json:"created_at"`
}

func toVoucherResponse(v *models.Voucher) VoucherResponse {
	return VoucherResponse{
		ID:             v.ID,
		Voucher:        v.Public(),
		RecipientEmail: v.RecipientEmail,
		PurchaserEmail: v.PurchaserEmail,
		CreatedOnline:  v.CreatedOnline,
		DeliveryState:  v.DeliveryState,
		CreatedAt:      v.CreatedAt,
	}
}

// Check handles GET /vouchers/{code}
func (h *VoucherHandler) Check(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Check(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Redeem handles POST /vouchers/{code}/redeem
// A voucher that cannot be redeemed answers 409 with the full report.
func (h *VoucherHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Redeem(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if isRedemptionRefusal(err) && view != nil {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":  "voucher_not_redeemable",
				"result": view,
			})
			return
		}
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func isRedemptionRefusal(err error) bool {
	return errors.Is(err, voucher.ErrAlreadyUsed) ||
		errors.Is(err, voucher.ErrExpired) ||
		errors.Is(err, voucher.ErrExcluded)
}

func (h *VoucherHandler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrVoucherNotFound) {
		writeError(w, http.StatusNotFound, "voucher_not_found")
		return
	}
	h.logger.Error("voucher lookup failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error")
}

// Create handles POST /admin/vouchers
func (h *VoucherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVoucherRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	v, err := h.service.CreateManual(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toVoucherResponse(v))
	case errors.Is(err, service.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "detail": err.Error()})
	case errors.Is(err, service.ErrMenuNotFound):
		writeError(w, http.StatusUnprocessableEntity, "menu_not_found")
	default:
		h.logger.Error("manual voucher creation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed_create_voucher")
	}
}

// Resend handles POST /admin/vouchers/{id}/resend
func (h *VoucherHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	v, err := h.service.Resend(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toVoucherResponse(v))
	case errors.Is(err, service.ErrVoucherNotFound):
		writeError(w, http.StatusNotFound, "voucher_not_found")
	case errors.Is(err, fulfillment.ErrRenderFailed):
		writeError(w, http.StatusBadGateway, "render_failed")
	case errors.Is(err, fulfillment.ErrDeliveryFailed):
		writeError(w, http.StatusBadGateway, "delivery_failed")
	default:
		h.logger.Error("resend failed", zap.String("voucher_id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
