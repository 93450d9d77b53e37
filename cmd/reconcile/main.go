package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/estate/internal/api"
	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/infrastructure"
	"github.com/JaimeStill/estate/internal/properties"
)

var errDrift = errors.New("creator links drifted")

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		fix    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Report and repair drift between properties and user property lists",
		Long: `Compares every property's creator with the creator's property list.

Dangling entries are ids in a user's list with no matching property created by
that user. Missing entries are properties absent from their creator's list.
With --fix both are repaired in a single transaction. Without --fix the command
exits non-zero when drift is found.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := run(ctx, fix)
			if err != nil {
				return err
			}

			if err := printReport(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}

			if !report.Consistent() && !report.Fixed {
				return errDrift
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "repair drift in a single transaction")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

func run(ctx context.Context, fix bool) (*properties.Report, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer infra.Database.Connection().Close()

	if err := infra.Database.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	domain := api.NewDomain(api.NewRuntime(cfg, infra))
	return domain.Properties.Reconcile(ctx, fix)
}

func printReport(w io.Writer, report *properties.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if report.Consistent() {
		fmt.Fprintln(w, "creator links consistent")
		return nil
	}

	for _, l := range report.Dangling {
		fmt.Fprintf(w, "dangling  user=%s property=%s\n", l.UserID, l.PropertyID)
	}
	for _, l := range report.Missing {
		fmt.Fprintf(w, "missing   user=%s property=%s\n", l.UserID, l.PropertyID)
	}

	status := "not fixed"
	if report.Fixed {
		status = "fixed"
	}
	fmt.Fprintf(w, "%d dangling, %d missing (%s)\n", len(report.Dangling), len(report.Missing), status)
	return nil
}
