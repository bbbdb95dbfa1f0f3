package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/wp2presta/internal/config"
	"github.com/mrlokans/wp2presta/internal/runstore"
)

// HistoryCommand prints past run summaries from the local run store.
type HistoryCommand struct {
	ConfigPath string
	Limit      int
	RunID      uint
}

func NewHistoryCommand() *HistoryCommand {
	return &HistoryCommand{}
}

func (cmd *HistoryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	fs.StringVar(&cmd.ConfigPath, "config", "config.yaml", "Path to the YAML configuration file")
	fs.IntVar(&cmd.Limit, "limit", 10, "How many runs to show, newest first")
	runID := fs.Uint("run", 0, "Show the per-page outcomes of one run instead of the summary list")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s history [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show past migration runs recorded in the local history database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.RunID = uint(*runID)
	return nil
}

func (cmd *HistoryCommand) Run() error {
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Migration.HistoryDBPath == "" {
		return fmt.Errorf("migration.history_db is not configured")
	}

	store, err := runstore.New(cfg.Migration.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if cmd.RunID != 0 {
		return cmd.printOutcomes(store)
	}
	return cmd.printRuns(store)
}

func (cmd *HistoryCommand) printRuns(store *runstore.Store) error {
	runs, err := store.RecentRuns(cmd.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-10s %-9s %8s %8s %8s %8s %8s\n",
		"ID", "Started", "Status", "Mode", "Created", "Updated", "Skipped", "Failed", "Images")
	for _, run := range runs {
		mode := "live"
		if run.DryRun {
			mode = "dry-run"
		}
		fmt.Printf("%-5d %-20s %-10s %-9s %8d %8d %8d %8d %8d\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Status, mode,
			run.Created, run.Updated, run.Skipped, run.Failed, run.Images)
	}
	return nil
}

func (cmd *HistoryCommand) printOutcomes(store *runstore.Store) error {
	outcomes, err := store.RunOutcomes(cmd.RunID)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Printf("No outcomes recorded for run %d.\n", cmd.RunID)
		return nil
	}

	for _, o := range outcomes {
		line := fmt.Sprintf("[%s] page %d /%s (%s)", o.Status, o.PageID, o.Slug, o.Decision)
		if o.Stage != "" {
			line += " stage=" + o.Stage
		}
		if o.Detail != "" {
			line += ": " + o.Detail
		}
		fmt.Println(line)
	}
	return nil
}
