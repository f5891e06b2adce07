package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/cache"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

// PeriodSource reads exclusion periods through the cache. Cache failures
// fall back to the store.
type PeriodSource struct {
	repo   PeriodRepo
	cache  cache.PeriodCache
	logger *zap.Logger
}

func NewPeriodSource(repo PeriodRepo, c cache.PeriodCache, logger *zap.Logger) *PeriodSource {
	return &PeriodSource{repo: repo, cache: c, logger: logger}
}

func (p *PeriodSource) Periods(ctx context.Context) ([]models.ExclusionPeriod, error) {
	periods, ok, err := p.cache.Get(ctx)
	if err != nil {
		p.logger.Warn("exclusion cache read failed", zap.Error(err))
	}
	if ok {
		return periods, nil
	}

	periods, err = p.repo.FindExclusionPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exclusion periods: %w", err)
	}
	if err := p.cache.Set(ctx, periods); err != nil {
		p.logger.Warn("exclusion cache write failed", zap.Error(err))
	}
	return periods, nil
}

func (p *PeriodSource) invalidate(ctx context.Context) {
	if err := p.cache.Invalidate(ctx); err != nil {
		p.logger.Warn("exclusion cache invalidation failed", zap.Error(err))
	}
}
