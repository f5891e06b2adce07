package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/config"
	"github.com/Cheertaboi/gift-voucher-service/internal/api"
	"github.com/Cheertaboi/gift-voucher-service/internal/api/handlers"
	"github.com/Cheertaboi/gift-voucher-service/internal/app"
	"github.com/Cheertaboi/gift-voucher-service/pkg/db"
	applogger "github.com/Cheertaboi/gift-voucher-service/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Stripe.WebhookSecret == "" {
		logger.Warn("stripe.webhook_secret is empty, every webhook will be rejected")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if err := db.RunMigrations(a.DB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// in-flight deliveries run on this context; it ends only if shutdown times out
	lifetime, endLifetime := context.WithCancel(context.Background())
	defer endLifetime()

	router := api.NewRouter(api.Handlers{
		Vouchers:   handlers.NewVoucherHandler(a.Vouchers, logger),
		Exclusions: handlers.NewExclusionHandler(a.Exclusions, logger),
		Webhooks:   handlers.NewWebhookHandler(lifetime, a.Pipeline, cfg.Stripe.WebhookSecret, logger),
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown", zap.Error(err))
			endLifetime()
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting voucher-service", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}
