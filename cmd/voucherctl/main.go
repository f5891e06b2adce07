package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/config"
	"github.com/Cheertaboi/gift-voucher-service/internal/app"
	applogger "github.com/Cheertaboi/gift-voucher-service/pkg/logger"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "voucherctl",
		Short:         "Operator tool for the gift voucher service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(codeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(redeemCmd())
	rootCmd.AddCommand(resendFailedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openApp() (*app.App, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger)
}
