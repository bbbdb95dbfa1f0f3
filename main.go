package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/wp2presta/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "migrate":
		cmd = cli.NewMigrateCommand()
	case "preview":
		cmd = cli.NewPreviewCommand()
	case "check":
		cmd = cli.NewCheckCommand()
	case "history":
		cmd = cli.NewHistoryCommand()
	case "watch":
		cmd = cli.NewWatchCommand()
	case "version":
		fmt.Printf("wp2presta %s (%s)\n", Version, Commit)
		return
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		usage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "wp2presta migrates WordPress pages to PrestaShop CMS pages.\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  migrate   Run the migration (supports -dry-run)\n")
	fmt.Fprintf(os.Stderr, "  preview   Write an HTML pre-flight report without touching PrestaShop\n")
	fmt.Fprintf(os.Stderr, "  check     Verify connectivity and credentials for both systems\n")
	fmt.Fprintf(os.Stderr, "  history   Show past runs from the local history database\n")
	fmt.Fprintf(os.Stderr, "  watch     Re-run the migration on a cron schedule\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n\n")
	fmt.Fprintf(os.Stderr, "Run '%s <command> -h' for command options.\n", os.Args[0])
}
