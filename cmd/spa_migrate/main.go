package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/migration"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/SscSPs/spa_ledger/internal/core/services"
	"github.com/SscSPs/spa_ledger/internal/platform/bootstrap"
	"github.com/SscSPs/spa_ledger/internal/platform/config"
	"github.com/spf13/pflag"
)

type flags struct {
	strategies string
	dryRun     bool
	yes        bool
	pageSize   int
	timeout    time.Duration
	sample     int
	jsonOut    bool
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var f flags
	fs := pflag.NewFlagSet("spa_migrate", pflag.ExitOnError)
	fs.StringVar(&f.strategies, "strategies", cfg.MigrationStrategies, `owner recovery: "default", "strict" or a list such as "explicit,signature"`)
	fs.BoolVar(&f.dryRun, "dry-run", false, "resolve and report without writing")
	fs.BoolVarP(&f.yes, "yes", "y", false, "do not ask for confirmation")
	fs.IntVar(&f.pageSize, "page-size", cfg.MigrationPageSize, "legacy scan page size")
	fs.DurationVar(&f.timeout, "timeout", cfg.MigrationScanTimeout, "legacy scan timeout, 0 for none")
	fs.IntVar(&f.sample, "sample", 5, "number of migrated records to print")
	fs.BoolVar(&f.jsonOut, "json", false, "print the report as JSON")
	_ = fs.Parse(os.Args[1:])

	opts, err := f.options()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, f, opts, logger); err != nil {
		logger.Error("Migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, f flags, opts portssvc.MigrationOptions, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer stores.Close()

	if !opts.DryRun && !f.yes {
		fmt.Printf("Migrate legacy transactions into the %s store using strategies %v? [y/N] ", cfg.StoreBackend, opts.Strategies)
		if !confirm(os.Stdin) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	migrator := services.NewMigrationService(stores.Repos.LegacyRepo, stores.Repos.TransactionRepo)
	report, err := migrator.Migrate(ctx, opts)
	if report != nil {
		if f.jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		} else {
			printReport(os.Stdout, report)
		}
	}
	return err
}

func (f flags) options() (portssvc.MigrationOptions, error) {
	strategies, err := migration.ParseStrategies(f.strategies)
	if err != nil {
		return portssvc.MigrationOptions{}, err
	}
	if f.timeout < 0 {
		return portssvc.MigrationOptions{}, fmt.Errorf("--timeout must not be negative")
	}
	return portssvc.MigrationOptions{
		Strategies:  strategies,
		DryRun:      f.dryRun,
		PageSize:    f.pageSize,
		ScanTimeout: f.timeout,
		SampleSize:  f.sample,
	}, nil
}

func confirm(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printReport(w io.Writer, r *migration.Report) {
	mode := "MIGRATION"
	if r.DryRun {
		mode = "DRY RUN"
	}
	fmt.Fprintf(w, "%s COMPLETE: %d/%d migrated, %d skipped\n", mode, r.Migrated, r.Total, r.Skipped)
	fmt.Fprintf(w, "Strategies: %v\n", r.Strategies)

	if len(r.Repaired) > 0 {
		fmt.Fprintf(w, "\nRepairs (%d on %d transactions):\n", len(r.Repaired), r.RepairedTransactions())
		for _, rep := range r.Repaired {
			fmt.Fprintf(w, "  %s  %-14s %s\n", rep.TransactionID, rep.Field, rep.Detail)
		}
	}
	if len(r.Skips) > 0 {
		fmt.Fprintf(w, "\nSkipped:\n")
		for _, s := range r.Skips {
			fmt.Fprintf(w, "  %s  %s\n", s.TransactionID, s.Reason)
		}
	}

	if !r.DryRun {
		status := "OK"
		if !r.Verified {
			status = "MISMATCH"
		}
		fmt.Fprintf(w, "\nVerification: %d of %d distinct keys written read back, %d items in destination [%s]\n",
			r.KeysFound, r.DistinctKeys, r.VerifiedCount, status)
		if extra := r.ExtraItems(); extra > 0 {
			fmt.Fprintf(w, "  %d destination items were not written by this run (live ledger entries or other sources)\n", extra)
		}
	}

	if len(r.Sample) > 0 {
		fmt.Fprintf(w, "\nSample:\n")
		for _, t := range r.Sample {
			fmt.Fprintf(w, "  member=%s txn=%s amount=%s time=%s", t.OwnerID, t.TransactionID, t.Amount, t.Timestamp)
			if t.SignatureRef != "" {
				fmt.Fprintf(w, " signature=%s", t.SignatureRef)
			}
			if t.Notes != "" {
				fmt.Fprintf(w, " notes=%q", t.Notes)
			}
			fmt.Fprintln(w)
		}
	}
}
