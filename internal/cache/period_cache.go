package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

// PeriodCache holds the exclusion period list read on every redemption check.
// A miss is reported with ok=false, never as an error.
type PeriodCache interface {
	Get(ctx context.Context) (periods []models.ExclusionPeriod, ok bool, err error)
	Set(ctx context.Context, periods []models.ExclusionPeriod) error
	Invalidate(ctx context.Context) error
}

type MemoryPeriodCache struct {
	mu      sync.RWMutex
	periods []models.ExclusionPeriod
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryPeriodCache(ttl time.Duration) *MemoryPeriodCache {
	return &MemoryPeriodCache{ttl: ttl, now: time.Now}
}

func (c *MemoryPeriodCache) Get(_ context.Context) ([]models.ExclusionPeriod, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.periods == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	out := make([]models.ExclusionPeriod, len(c.periods))
	copy(out, c.periods)
	return out, true, nil
}

func (c *MemoryPeriodCache) Set(_ context.Context, periods []models.ExclusionPeriod) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.periods = make([]models.ExclusionPeriod, len(periods))
	copy(c.periods, periods)
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *MemoryPeriodCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.periods = nil
	return nil
}
