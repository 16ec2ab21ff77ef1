// Command fetch prints the most popular content once and exits.
//
// Example, last week's top five pages of an analytics view:
//
//	fetch -profile 33408065 -auth service-account.json -window 168h
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/okian/mostpopular/internal/app"
	"github.com/okian/mostpopular/internal/config"
	"github.com/okian/mostpopular/internal/domain/result"
	"github.com/okian/mostpopular/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "fetch:", err)
		os.Exit(1)
	}
}

// options holds the command-line overrides applied on top of the loaded config.
type options struct {
	timeout time.Duration
	verbose bool
}

// parseFlags loads the config and applies flags set in args.
func parseFlags(ctx context.Context, args []string, stderr io.Writer) (*config.Config, options, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, options{}, err
	}

	var opts options
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "Backend: analytics or ezlegacy")
	fs.StringVar(&cfg.Analytics.ProfileID, "profile", cfg.Analytics.ProfileID, "Analytics profile (view) id")
	fs.StringVar(&cfg.Analytics.AuthConfigFile, "auth", cfg.Analytics.AuthConfigFile, "Service account credential file")
	fs.StringVar(&cfg.EzLegacy.DSN, "dsn", cfg.EzLegacy.DSN, "eZ Publish database dsn")
	fs.IntVar(&cfg.EzLegacy.SectionID, "section", cfg.EzLegacy.SectionID, "eZ Publish section id")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Maximum number of results")
	fs.IntVar(&cfg.Offset, "offset", cfg.Offset, "Results to skip")
	fs.StringVar(&cfg.Sort, "sort", cfg.Sort, "Sort direction: asc or desc")
	fs.DurationVar(&cfg.Window, "window", cfg.Window, "Lookback ending now")
	fs.DurationVar(&opts.timeout, "timeout", defaultTimeout, "Fetch timeout")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, options{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, options{}, err
	}
	return cfg, opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseFlags(ctx, args, stderr)
	if err != nil {
		return err
	}

	log := logger.Nop()
	if opts.verbose {
		_ = logger.SetLevelString("debug")
		log = logger.New(stderr)
	}

	svc, err := app.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	results, err := svc.MostPopular(app.WithRequestID(ctx, app.NewRequestID()), app.Request{})
	if err != nil {
		return err
	}
	return printResults(stdout, results)
}

// printResults writes one identifier<TAB>name line per result.
func printResults(w io.Writer, results []result.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Identifier(), r.Name()); err != nil {
			return err
		}
	}
	return nil
}
