package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

// ── mock VoucherRepo ──

type mockVoucherRepo struct {
	mu       sync.Mutex
	vouchers map[uuid.UUID]*models.Voucher
}

func newMockVoucherRepo() *mockVoucherRepo {
	return &mockVoucherRepo{vouchers: make(map[uuid.UUID]*models.Voucher)}
}

func (m *mockVoucherRepo) put(v *models.Voucher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.vouchers[v.ID] = &cp
}

func (m *mockVoucherRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vouchers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *mockVoucherRepo) GetByCode(_ context.Context, code string) (*models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vouchers {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockVoucherRepo) ListByDeliveryState(_ context.Context, state models.DeliveryState) ([]models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Voucher
	for _, v := range m.vouchers {
		if v.DeliveryState == state {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockVoucherRepo) ListStalled(_ context.Context, cutoff time.Time) ([]models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Voucher
	for _, v := range m.vouchers {
		if v.CreatedOnline && v.DeliveryState == models.DeliveryNotAttempted && v.CreatedAt.Before(cutoff) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockVoucherRepo) CreateVoucher(_ context.Context, v *models.Voucher) error {
	m.put(v)
	return nil
}

func (m *mockVoucherRepo) CodeExists(_ context.Context, code string) (bool, error) {
	_, err := m.GetByCode(context.Background(), code)
	return err == nil, nil
}

func (m *mockVoucherRepo) RedeemVoucher(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vouchers[id]
	if !ok {
		return models.ErrNotFound
	}
	if v.IsUsed {
		return models.ErrAlreadyRedeemed
	}
	v.IsUsed, v.UsedAt = true, &usedAt
	return nil
}

// ── mock MenuRepo ──

type mockMenuRepo struct{}

func (mockMenuRepo) FindMenu(_ context.Context, ref string) (*models.Menu, error) {
	if ref != "tasting" {
		return nil, models.ErrNotFound
	}
	return &models.Menu{ID: "tasting", Label: "Tasting menu", UnitPrice: decimal.RequireFromString("45.50")}, nil
}

// ── mock PeriodRepo ──

type mockPeriodRepo struct {
	periods []models.ExclusionPeriod
	loads   int
}

func (m *mockPeriodRepo) FindExclusionPeriods(context.Context) ([]models.ExclusionPeriod, error) {
	m.loads++
	out := make([]models.ExclusionPeriod, len(m.periods))
	copy(out, m.periods)
	return out, nil
}

func (m *mockPeriodRepo) GetPeriod(_ context.Context, id uuid.UUID) (*models.ExclusionPeriod, error) {
	for i := range m.periods {
		if m.periods[i].ID == id {
			cp := m.periods[i]
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockPeriodRepo) CreatePeriod(_ context.Context, p *models.ExclusionPeriod) error {
	m.periods = append(m.periods, *p)
	return nil
}

func (m *mockPeriodRepo) UpdatePeriod(_ context.Context, p *models.ExclusionPeriod) error {
	for i := range m.periods {
		if m.periods[i].ID == p.ID {
			m.periods[i] = *p
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *mockPeriodRepo) DeletePeriod(_ context.Context, id uuid.UUID) error {
	for i := range m.periods {
		if m.periods[i].ID == id {
			m.periods = append(m.periods[:i], m.periods[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// ── mock Resender ──

type mockResender struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *mockResender) Resend(_ context.Context, v *models.Voucher) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, v.Code)
	return 1, m.err
}
