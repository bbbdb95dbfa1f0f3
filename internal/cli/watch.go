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
	"github.com/mrlokans/wp2presta/internal/scheduler"
)

// WatchCommand re-runs the migration on a cron schedule until interrupted.
type WatchCommand struct {
	ConfigPath string
	Schedule   string
	DryRun     bool
	Verbose    bool
}

func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	fs.StringVar(&cmd.ConfigPath, "config", "config.yaml", "Path to the YAML configuration file")
	fs.StringVar(&cmd.Schedule, "schedule", "0 */6 * * *", "Cron schedule for repeated runs")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Run every pass in dry-run mode")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Keep re-running the idempotent migration on a schedule. Each pass pulls\n")
		fmt.Fprintf(os.Stderr, "the current WordPress content and upserts it into PrestaShop.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s watch -config config.yaml -schedule \"0 */6 * * *\"\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *WatchCommand) Run() error {
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Migration.LogFile, cmd.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *runstore.Store
	if cfg.Migration.HistoryDBPath != "" {
		store, err = runstore.New(cfg.Migration.HistoryDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	runOnce := func(runCtx context.Context) error {
		// A fresh pipeline per pass keeps the image cache scoped to one run.
		p := buildPipeline(cfg, cmd.DryRun, 0)
		report, err := p.migrator.Run(runCtx)
		if err != nil {
			return err
		}
		slog.Info("scheduled pass finished",
			"created", report.Created(), "updated", report.Updated(),
			"skipped", report.Skipped(), "failed", report.Failed())
		if store != nil {
			if _, err := store.SaveReport(report); err != nil {
				slog.Warn("failed to persist run", "error", err)
			}
		}
		return nil
	}

	sched := scheduler.New(runOnce)
	if err := sched.Start(ctx, cmd.Schedule); err != nil {
		return err
	}

	fmt.Printf("Watching: migration scheduled at %q. Press Ctrl-C to stop.\n", cmd.Schedule)
	<-ctx.Done()
	sched.Stop()
	return nil
}
