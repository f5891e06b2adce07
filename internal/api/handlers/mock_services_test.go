package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/gift-voucher-service/internal/fulfillment"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

func sampleVoucher() *models.Voucher {
	return &models.Voucher{
		ID:             uuid.MustParse("6f1c2a9e-3b7d-4f0a-9c1e-5d2b8a7f4e10"),
		Code:           "INF-7K3Q-M2XH",
		MenuReference:  "tasting",
		ProductLabel:   "Tasting menu",
		NumberOfPeople: 2,
		Amount:         decimal.RequireFromString("91"),
		RecipientName:  "Ada",
		PurchaserName:  "Charles",
		PurchaserEmail: "charles@example.com",
		PurchaseDate:   time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:     time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		DeliveryState:  models.DeliverySent,
	}
}

// ── mock VoucherService ──

type mockVoucherService struct {
	view     *models.RedemptionView
	err      error
	created  *models.CreateVoucherRequest
	resentID uuid.UUID
	lastCode string
}

func (m *mockVoucherService) Check(_ context.Context, code string) (*models.RedemptionView, error) {
	m.lastCode = code
	return m.view, m.err
}

func (m *mockVoucherService) Redeem(_ context.Context, code string) (*models.RedemptionView, error) {
	m.lastCode = code
	return m.view, m.err
}

func (m *mockVoucherService) CreateManual(_ context.Context, req models.CreateVoucherRequest) (*models.Voucher, error) {
	m.created = &req
	if m.err != nil {
		return nil, m.err
	}
	v := sampleVoucher()
	v.CreatedOnline = false
	v.DeliveryState = models.DeliveryNotAttempted
	return v, nil
}

func (m *mockVoucherService) Resend(_ context.Context, id uuid.UUID) (*models.Voucher, error) {
	m.resentID = id
	if m.err != nil {
		return nil, m.err
	}
	return sampleVoucher(), nil
}

// ── mock ExclusionService ──

type mockExclusionService struct {
	periods []models.ExclusionPeriod
	err     error
	deleted uuid.UUID
}

func (m *mockExclusionService) List(context.Context) ([]models.ExclusionPeriod, error) {
	return m.periods, m.err
}

func (m *mockExclusionService) Create(_ context.Context, req models.ExclusionPeriodRequest) (*models.ExclusionPeriod, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ExclusionPeriod{ID: uuid.New(), Name: req.Name}, nil
}

func (m *mockExclusionService) Update(_ context.Context, id uuid.UUID, req models.ExclusionPeriodRequest) (*models.ExclusionPeriod, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ExclusionPeriod{ID: id, Name: req.Name}, nil
}

func (m *mockExclusionService) Delete(_ context.Context, id uuid.UUID) error {
	m.deleted = id
	return m.err
}

// ── mock Fulfiller ──

type mockFulfiller struct {
	events []models.PaymentEvent
	out    *fulfillment.Outcome
	err    error
}

func (m *mockFulfiller) Fulfill(_ context.Context, ev models.PaymentEvent) (*fulfillment.Outcome, error) {
	m.events = append(m.events, ev)
	return m.out, m.err
}
