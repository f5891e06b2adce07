package fulfillment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/internal/retry"
)

// ── fake store ──

type fakeStore struct {
	mu       sync.Mutex
	vouchers map[uuid.UUID]*models.Voucher
	byRef    map[string]uuid.UUID
	menus    map[string]*models.Menu
	createFn func(v *models.Voucher) error

	// lookupBarrier, when set, holds the first two reference lookups until both arrived.
	lookupBarrier *sync.WaitGroup
	lookups       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vouchers: make(map[uuid.UUID]*models.Voucher),
		byRef:    make(map[string]uuid.UUID),
		menus: map[string]*models.Menu{
			"tasting": {ID: "tasting", Label: "Tasting menu", UnitPrice: decimal.RequireFromString("45.50")},
		},
	}
}

func (s *fakeStore) FindVoucherByPaymentReference(_ context.Context, ref string) (*models.Voucher, error) {
	s.mu.Lock()
	s.lookups++
	n := s.lookups
	barrier := s.lookupBarrier
	s.mu.Unlock()

	if barrier != nil && n <= 2 {
		barrier.Done()
		barrier.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRef[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *s.vouchers[id]
	return &cp, nil
}

func (s *fakeStore) CreateVoucher(_ context.Context, v *models.Voucher) error {
	if s.createFn != nil {
		if err := s.createFn(v); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.OriginPaymentReference != nil {
		if _, taken := s.byRef[*v.OriginPaymentReference]; taken {
			return models.ErrDuplicateReference
		}
		s.byRef[*v.OriginPaymentReference] = v.ID
	}
	cp := *v
	s.vouchers[v.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateVoucherDeliveryState(_ context.Context, id uuid.UUID, state models.DeliveryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[id]
	if !ok {
		return models.ErrNotFound
	}
	v.DeliveryState = state
	return nil
}

func (s *fakeStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vouchers {
		if v.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) FindMenu(_ context.Context, ref string) (*models.Menu, error) {
	m, ok := s.menus[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vouchers)
}

func (s *fakeStore) get(id uuid.UUID) models.Voucher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.vouchers[id]
}

// ── fake renderer ──

type fakeRenderer struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (r *fakeRenderer) Render(_ context.Context, doc models.PublicFields) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + doc.Code), nil
}

// ── fake notifier ──

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []models.Notification
	attempts int
	// failures lists the error returned per attempt; nil entries succeed.
	failures []error
}

var errSMTPDown = errors.New("smtp: connection refused")

func (n *fakeNotifier) Send(_ context.Context, msg models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	idx := n.attempts
	n.attempts++
	if idx < len(n.failures) && n.failures[idx] != nil {
		return n.failures[idx]
	}
	n.sent = append(n.sent, msg)
	return nil
}

func permanent(err error) error { return retry.Permanent(err) }
