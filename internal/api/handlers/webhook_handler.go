package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/fulfillment"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

// Checkout session metadata keys set by the shop front end.
const (
	metaMenuReference  = "menu_reference"
	metaNumberOfPeople = "number_of_people"
	metaRecipientName  = "recipient_name"
	metaRecipientEmail = "recipient_email"
	metaPurchaserName  = "purchaser_name"
)

const maxWebhookBody = 65536

var errSessionMetadata = errors.New("checkout session metadata incomplete")

type Fulfiller interface {
	Fulfill(ctx context.Context, ev models.PaymentEvent) (*fulfillment.Outcome, error)
}

type WebhookHandler struct {
	lifetime  context.Context
	fulfiller Fulfiller
	secret    string
	logger    *zap.Logger
}

// NewWebhookHandler builds the handler. Fulfillment outlives the request
// and is only cancelled when lifetime is, typically at server shutdown.
func NewWebhookHandler(lifetime context.Context, f Fulfiller, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{lifetime: lifetime, fulfiller: f, secret: secret, logger: logger}
}

// detach keeps the values of req but takes cancellation from lifetime only.
func detach(req, lifetime context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(req))
	stop := context.AfterFunc(lifetime, cancel)
	if lifetime.Err() != nil {
		cancel()
	}
	return ctx, func() {
		stop()
		cancel()
	}
}

// Stripe handles POST /webhooks/stripe
// Any 2xx tells the gateway to stop redelivering, so only failures that
// left no voucher behind answer 5xx.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.logger.Warn("webhook signature rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_signature")
		return
	}

	if event.Type != "checkout.session.completed" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event")
		return
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		h.logger.Info("checkout session not paid yet", zap.String("session_id", sess.ID))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	ev, err := paymentEventFromSession(&sess)
	if err != nil {
		h.logger.Error("unusable checkout session", zap.String("session_id", sess.ID), zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_event")
		return
	}

	// a gateway that hangs up must not abandon delivery halfway
	ctx, cancel := detach(r.Context(), h.lifetime)
	defer cancel()
	out, err := h.fulfiller.Fulfill(ctx, ev)
	switch {
	case errors.Is(err, fulfillment.ErrInvalidEvent):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_event", "detail": err.Error()})
		return
	case err != nil:
		h.logger.Error("fulfillment failed", zap.String("session_id", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "fulfillment_failed")
		return
	}

	resp := map[string]string{
		"status":         "fulfilled",
		"voucher_id":     out.Voucher.ID.String(),
		"delivery_state": string(out.Voucher.DeliveryState),
	}
	if out.Duplicate {
		resp["status"] = "duplicate"
	}
	if out.DeliveryErr != nil {
		resp["delivery_state"] = string(models.DeliveryFailed)
	}
	writeJSON(w, http.StatusOK, resp)
}

func paymentEventFromSession(sess *stripe.CheckoutSession) (models.PaymentEvent, error) {
	md := sess.Metadata
	people, err := strconv.Atoi(strings.TrimSpace(md[metaNumberOfPeople]))
	if err != nil {
		return models.PaymentEvent{}, fmt.Errorf("%w: %s: %v", errSessionMetadata, metaNumberOfPeople, err)
	}
	if md[metaMenuReference] == "" {
		return models.PaymentEvent{}, fmt.Errorf("%w: %s missing", errSessionMetadata, metaMenuReference)
	}

	ev := models.PaymentEvent{
		Reference:      sess.ID,
		MenuReference:  md[metaMenuReference],
		NumberOfPeople: people,
		RecipientName:  md[metaRecipientName],
		RecipientEmail: md[metaRecipientEmail],
		PurchaserName:  md[metaPurchaserName],
		Amount:         decimal.New(sess.AmountTotal, -2),
	}
	if cd := sess.CustomerDetails; cd != nil {
		ev.PurchaserEmail = cd.Email
		if ev.PurchaserName == "" {
			ev.PurchaserName = cd.Name
		}
	}
	return ev, nil
}
