package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/api/handlers"
)

func TestHealth(t *testing.T) {
	log := zap.NewNop()
	r := NewRouter(Handlers{
		Vouchers:   handlers.NewVoucherHandler(nil, log),
		Exclusions: handlers.NewExclusionHandler(nil, log),
		Webhooks:   handlers.NewWebhookHandler(context.Background(), nil, "whsec_test", log),
	}, log)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	log := zap.NewNop()
	r := NewRouter(Handlers{
		Vouchers:   handlers.NewVoucherHandler(nil, log),
		Exclusions: handlers.NewExclusionHandler(nil, log),
		Webhooks:   handlers.NewWebhookHandler(context.Background(), nil, "whsec_test", log),
	}, log)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/reports", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
