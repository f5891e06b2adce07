package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

const periodsKey = "voucher:exclusion_periods"

// RedisPeriodCache shares the period list between service instances.
type RedisPeriodCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisPeriodCache(rdb *goredis.Client, ttl time.Duration) *RedisPeriodCache {
	return &RedisPeriodCache{rdb: rdb, ttl: ttl}
}

func (c *RedisPeriodCache) Get(ctx context.Context) ([]models.ExclusionPeriod, bool, error) {
	raw, err := c.rdb.Get(ctx, periodsKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get periods: %w", err)
	}
	var periods []models.ExclusionPeriod
	if err := json.Unmarshal(raw, &periods); err != nil {
		return nil, false, fmt.Errorf("decode cached periods: %w", err)
	}
	return periods, true, nil
}

func (c *RedisPeriodCache) Set(ctx context.Context, periods []models.ExclusionPeriod) error {
	raw, err := json.Marshal(periods)
	if err != nil {
		return fmt.Errorf("encode periods: %w", err)
	}
	return c.rdb.Set(ctx, periodsKey, raw, c.ttl).Err()
}

func (c *RedisPeriodCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, periodsKey).Err()
}
