package cli

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/wp2presta/internal/config"
	"github.com/mrlokans/wp2presta/internal/logging"
	"github.com/mrlokans/wp2presta/internal/runstore"
)

// MigrateCommand runs the WordPress to PrestaShop migration.
type MigrateCommand struct {
	ConfigPath string
	DryRun     bool
	Workers    int
	Verbose    bool
}

func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.StringVar(&cmd.ConfigPath, "config", "config.yaml", "Path to the YAML configuration file")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Transform and match pages without writing anything to PrestaShop")
	fs.IntVar(&cmd.Workers, "workers", 0, "Concurrent page workers (0 = use the configured value; 1 keeps report order)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Migrate published WordPress pages to PrestaShop CMS pages.\n")
		fmt.Fprintf(os.Stderr, "Re-running is safe: pages are matched by slug and updated in place.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Preview without touching the shop:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate -config config.yaml -dry-run\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Live migration with four parallel pages:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate -config config.yaml -workers 4\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *MigrateCommand) Run() error {
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Migration.LogFile, cmd.Verbose)

	p := buildPipeline(cfg, cmd.DryRun, cmd.Workers)
	dryRun := cmd.DryRun || cfg.Migration.DryRun

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dryRun {
		slog.Info("dry run: no changes will be made to PrestaShop")
	} else {
		if err := p.ps.CheckConnection(ctx); err != nil {
			return fmt.Errorf("prestashop pre-flight check: %w", err)
		}
	}

	report, err := p.migrator.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())

	if cfg.Migration.HistoryDBPath != "" {
		store, err := runstore.New(cfg.Migration.HistoryDBPath)
		if err != nil {
			slog.Warn("run history unavailable", "error", err)
		} else {
			defer store.Close()
			if run, err := store.SaveReport(report); err != nil {
				slog.Warn("failed to persist run", "error", err)
			} else {
				slog.Info("run recorded", "run_id", run.ID)
			}
		}
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%d page(s) failed, see the report above", report.Failed())
	}
	return nil
}
