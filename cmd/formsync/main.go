// Package main is the entry point for the formsync scenario runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dshills/formsync/internal/app"
	"github.com/dshills/formsync/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// overrides collects repeated -set flags.
type overrides []string

func (o *overrides) String() string { return strings.Join(*o, ",") }

func (o *overrides) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts, logLevel, ok := parseFlags(settings)
	if !ok {
		return 2
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	level, err := settings.Level()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	color, err := config.ParseColorMode(settings.Color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	opts.Color = color.Colorize(term.IsTerminal(int(os.Stdout.Fd())))

	application, err := app.New(opts, os.Stdout, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(settings config.Settings) (app.Options, string, bool) {
	var opts app.Options
	var sets overrides
	var logLevel string
	var showVersion bool

	flag.StringVar(&opts.DefaultsPath, "defaults", "", "Default values file (TOML, YAML or JSON)")
	flag.StringVar(&opts.DefaultsPath, "d", "", "Default values file (shorthand)")
	flag.Var(&sets, "set", "Override a default value, path=value (repeatable)")
	flag.StringVar(&opts.Query, "query", "", "Print only the part of the snapshot at this gjson path")
	flag.StringVar(&opts.Query, "q", "", "Query path (shorthand)")
	flag.StringVar(&opts.KeyPrefix, "seq-keys", "", "Use sequential item keys with this prefix")
	flag.StringVar(&opts.Mode, "mode", "", "Validation mode (onSubmit, onBlur, onChange, onTouched, all)")
	flag.StringVar(&opts.ReValidateMode, "revalidate", "", "Re-validation mode after a submit")
	flag.BoolVar(&opts.Watch, "watch", false, "Rerun when the script or defaults change")
	flag.BoolVar(&opts.Watch, "w", false, "Watch mode (shorthand)")
	flag.DurationVar(&opts.Debounce, "debounce", settings.Debounce, "Delay before rerunning in watch mode")
	flag.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "Maximum run time of one scenario")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "formsync - run form-state scenarios\n\n")
		fmt.Fprintf(os.Stderr, "Usage: formsync [options] script.lua\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  FORMSYNC_LOG_LEVEL       Log level (default info)\n")
		fmt.Fprintf(os.Stderr, "  FORMSYNC_COLOR           auto, always or never (default auto)\n")
		fmt.Fprintf(os.Stderr, "  FORMSYNC_WATCH_DEBOUNCE  Watch debounce (default 100ms)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  formsync signup.lua                       Run a scenario\n")
		fmt.Fprintf(os.Stderr, "  formsync -d signup.toml signup.lua        Start from defaults\n")
		fmt.Fprintf(os.Stderr, "  formsync -set items.0.qty=3 -q errors s.lua  Override and query\n")
		fmt.Fprintf(os.Stderr, "  formsync -w -d signup.yaml signup.lua     Rerun on change\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("formsync %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return opts, "", false
	}
	opts.ScriptPath = flag.Arg(0)
	opts.Overrides = sets
	return opts, logLevel, true
}
