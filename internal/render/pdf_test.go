package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

func TestPDFRenderer_Render(t *testing.T) {
	r := NewPDFRenderer("Chez Infini")
	out, err := r.Render(context.Background(), models.PublicFields{
		Code:           "INF-7K3Q-M2XH",
		ProductLabel:   "Menu dégustation",
		NumberOfPeople: 2,
		Amount:         decimal.RequireFromString("91"),
		RecipientName:  "Zoé",
		PurchaserName:  "Léon",
		ExpiryDate:     time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestPDFRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPDFRenderer("x").Render(ctx, models.PublicFields{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
