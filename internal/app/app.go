// Package app wires the service's dependencies from configuration. It is
// shared by the HTTP server and the operator CLI.
package app

import (
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/config"
	"github.com/Cheertaboi/gift-voucher-service/internal/cache"
	"github.com/Cheertaboi/gift-voucher-service/internal/codegen"
	"github.com/Cheertaboi/gift-voucher-service/internal/fulfillment"
	"github.com/Cheertaboi/gift-voucher-service/internal/notify"
	"github.com/Cheertaboi/gift-voucher-service/internal/render"
	"github.com/Cheertaboi/gift-voucher-service/internal/repository"
	"github.com/Cheertaboi/gift-voucher-service/internal/retry"
	"github.com/Cheertaboi/gift-voucher-service/internal/service"
	"github.com/Cheertaboi/gift-voucher-service/pkg/db"
	"github.com/Cheertaboi/gift-voucher-service/pkg/redis"
)

type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *sql.DB
	Redis      *goredis.Client
	Codes      *codegen.Generator
	Pipeline   *fulfillment.Pipeline
	Vouchers   *service.VoucherService
	Exclusions *service.ExclusionService
}

// New connects to Postgres (and Redis when configured) and builds the
// repository → service graph. Migrations are not run here.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Voucher.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	codes, err := codegen.New(cfg.Voucher.CodePrefix)
	if err != nil {
		return nil, err
	}

	conn, err := db.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, DB: conn, Codes: codes}

	var periodCache cache.PeriodCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			// degrade to the in-process cache rather than refusing to start
			logger.Warn("redis unavailable, using in-memory exclusion cache", zap.Error(err))
		} else {
			a.Redis = rdb
		}
	}
	if a.Redis != nil {
		periodCache = cache.NewRedisPeriodCache(a.Redis, cfg.Cache.ExclusionTTL)
	} else {
		periodCache = cache.NewMemoryPeriodCache(cfg.Cache.ExclusionTTL)
	}

	mailer, err := notify.NewMailer(&cfg.Mail, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	store := repository.NewStore(conn)
	policy := retry.Policy{
		MaxAttempts: cfg.Delivery.MaxAttempts,
		Backoff:     retry.Exponential(cfg.Delivery.InitialBackoff, cfg.Delivery.MaxBackoff),
	}
	a.Pipeline = fulfillment.NewPipeline(store, codes, render.NewPDFRenderer(cfg.Voucher.RestaurantName), mailer, policy, logger,
		fulfillment.WithClock(func() time.Time { return time.Now().In(loc) }))

	periods := service.NewPeriodSource(store.ExclusionRepo, periodCache, logger)
	a.Vouchers = service.NewVoucherService(store.VoucherRepo, store.MenuRepo, periods, codes, a.Pipeline,
		cfg.Voucher.ExpiryWarningDays, cfg.Delivery.StallAfter, loc, logger)
	a.Exclusions = service.NewExclusionService(store.ExclusionRepo, periods, logger)
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
