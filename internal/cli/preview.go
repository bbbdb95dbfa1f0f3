package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/wp2presta/internal/config"
	"github.com/mrlokans/wp2presta/internal/logging"
	"github.com/mrlokans/wp2presta/internal/preview"
	"github.com/mrlokans/wp2presta/internal/routing"
	"github.com/mrlokans/wp2presta/internal/transform"
	"github.com/mrlokans/wp2presta/internal/wordpress"
)

// PreviewCommand writes an HTML pre-flight report without contacting PrestaShop.
type PreviewCommand struct {
	ConfigPath string
	OutputPath string
	Verbose    bool
}

func NewPreviewCommand() *PreviewCommand {
	return &PreviewCommand{}
}

func (cmd *PreviewCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)

	fs.StringVar(&cmd.ConfigPath, "config", "config.yaml", "Path to the YAML configuration file")
	fs.StringVar(&cmd.OutputPath, "output", "preview.html", "Where to write the HTML report")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s preview [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scan the WordPress site and write an HTML report of what a migration\n")
		fmt.Fprintf(os.Stderr, "would do: slugs, meta fields, routing decisions and discovered images.\n")
		fmt.Fprintf(os.Stderr, "PrestaShop is never contacted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *PreviewCommand) Run() error {
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return err
	}
	logging.Setup("", cmd.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wp := wordpress.NewClient(cfg.WordPress.APIBase(), cfg.WordPress.Username, cfg.WordPress.AppPassword)
	pages, err := wp.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("scan wordpress: %w", err)
	}

	report := preview.Build(
		cfg.WordPress.URL,
		pages,
		transform.New(cfg.WordPress.URL),
		routing.New(cfg.Mapping),
		cfg.PrestaShop.CMSCategoryID,
		cfg.PrestaShop.DefaultLangID,
	)

	out, err := os.Create(cmd.OutputPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer out.Close()

	if err := report.WriteHTML(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Preview written to %s (%d to migrate, %d skipped, %d with errors)\n",
		cmd.OutputPath, report.Migrating, report.Skipping, report.Failing)
	return nil
}
