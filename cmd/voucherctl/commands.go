package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Cheertaboi/gift-voucher-service/internal/codegen"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/pkg/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			conn, err := db.NewPostgresConnection(cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.RunMigrations(conn, logger)
		},
	}
}

func codeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate or check voucher codes without touching the store",
	}

	var count int
	var prefix string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Print sample codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := codegen.New(prefix)
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				code, err := gen.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	generate.Flags().IntVarP(&count, "count", "n", 1, "number of codes")
	generate.Flags().StringVarP(&prefix, "prefix", "p", codegen.DefaultPrefix, "code prefix")

	check := &cobra.Command{
		Use:   "check [code]",
		Short: "Report whether a code is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := codegen.New(prefix)
			if err != nil {
				return err
			}
			code := codegen.Normalize(args[0])
			if !gen.IsWellFormed(code) {
				return fmt.Errorf("%s is not a well-formed %s code", code, gen.Prefix())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", code)
			return nil
		},
	}
	check.Flags().StringVarP(&prefix, "prefix", "p", codegen.DefaultPrefix, "code prefix")

	cmd.AddCommand(generate, check)
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [code]",
		Short: "Show a voucher and its validation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.Vouchers.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func redeemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem [code]",
		Short: "Mark a voucher as used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.Vouchers.Redeem(cmd.Context(), args[0])
			if view != nil {
				if perr := printJSON(cmd.OutOrStdout(), view); perr != nil {
					return errors.Join(err, perr)
				}
			}
			return err
		},
	}
}

func resendFailedCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "resend-failed",
		Short: "Redeliver failed deliveries and online vouchers whose delivery stalled",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.Vouchers.ResendFailed(cmd.Context(), workers)
			fmt.Fprintf(cmd.OutOrStdout(), "total=%d delivered=%d failed=%d\n", sum.Total, sum.Delivered, sum.Failed)
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d deliveries failed", sum.Failed, sum.Total)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent deliveries")
	return cmd
}

func printJSON(w io.Writer, v *models.RedemptionView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
