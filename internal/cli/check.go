package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/wp2presta/internal/config"
	"github.com/mrlokans/wp2presta/internal/logging"
	"github.com/mrlokans/wp2presta/internal/prestashop"
)

// CheckCommand verifies connectivity and credentials for both systems.
type CheckCommand struct {
	ConfigPath string
	Verbose    bool
}

func NewCheckCommand() *CheckCommand {
	return &CheckCommand{}
}

func (cmd *CheckCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)

	fs.StringVar(&cmd.ConfigPath, "config", "config.yaml", "Path to the YAML configuration file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s check [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Verify that the WordPress REST API and the PrestaShop Webservice are\n")
		fmt.Fprintf(os.Stderr, "reachable with the configured credentials.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *CheckCommand) Run() error {
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return err
	}
	logging.Setup("", cmd.Verbose)

	ctx := context.Background()
	p := buildPipeline(cfg, true, 0)
	failed := false

	if err := p.wp.CheckConnection(ctx); err != nil {
		fmt.Printf("WordPress   %s: FAILED (%v)\n", cfg.WordPress.URL, err)
		failed = true
	} else {
		fmt.Printf("WordPress   %s: OK\n", cfg.WordPress.URL)
	}

	if err := p.ps.CheckConnection(ctx); err != nil {
		if errors.Is(err, prestashop.ErrInvalidAPIKey) {
			fmt.Printf("PrestaShop  %s: FAILED (API key rejected)\n", cfg.PrestaShop.URL)
		} else {
			fmt.Printf("PrestaShop  %s: FAILED (%v)\n", cfg.PrestaShop.URL, err)
		}
		failed = true
	} else {
		fmt.Printf("PrestaShop  %s: OK\n", cfg.PrestaShop.URL)
	}

	if failed {
		return fmt.Errorf("connection check failed")
	}
	return nil
}
