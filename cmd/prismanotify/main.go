package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/prismanotify/prismanotify/internal/config"
	"github.com/prismanotify/prismanotify/internal/notifier"
	"github.com/prismanotify/prismanotify/internal/poller"
	"github.com/prismanotify/prismanotify/internal/prisma"
	"github.com/prismanotify/prismanotify/internal/query"
	"github.com/prismanotify/prismanotify/internal/state"
	"github.com/prismanotify/prismanotify/internal/version"
)

// cliOptions holds the command line. Empty strings leave the settings file
// value in place.
type cliOptions struct {
	settings    string
	state       string
	logLevel    string
	logFormat   string
	logFile     string
	filters     []string
	timeRange   string
	summary     bool
	dryRun      bool
	showVersion bool
}

func parseFlags(args []string) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := pflag.NewFlagSet("prismanotify", pflag.ContinueOnError)
	fs.StringVar(&opts.settings, "settings", config.DefaultPath(), "Path to the settings file")
	fs.StringVar(&opts.state, "state", "", "Path to the state file (overrides state.path)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format (json, console)")
	fs.StringVar(&opts.logFile, "log-file", "", "Also write logs to this rotating file")
	fs.StringArrayVar(&opts.filters, "filter", nil, "Alert filter name=value or name!=value, repeatable; replaces the stored filters")
	fs.StringVar(&opts.timeRange, "time-range", "", "Relative time range such as 24h, 7d, 2w, 1mo")
	fs.BoolVar(&opts.summary, "summary", false, "Log alert counts per policy")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Fetch and diff alerts without notifying or saving")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// apply copies flag overrides onto cfg and revalidates it.
func (o *cliOptions) apply(cfg *config.Config) error {
	if o.state != "" {
		cfg.State.Path = o.state
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	return config.ValidateConfig(cfg)
}

// pollerOptions converts the query flags into poller overrides.
func (o *cliOptions) pollerOptions(cfg *config.Config) (poller.Options, error) {
	opts := poller.Options{
		Retention: cfg.State.Retention,
		FailFast:  cfg.Notify.FailFast,
		Summary:   o.summary,
		DryRun:    o.dryRun,
	}
	for _, expr := range o.filters {
		f, err := query.ParseFilter(expr)
		if err != nil {
			return poller.Options{}, err
		}
		opts.Filters = append(opts.Filters, f)
	}
	if o.timeRange != "" {
		tr, err := query.ParseTimeRange(o.timeRange)
		if err != nil {
			return poller.Options{}, err
		}
		opts.TimeRange = &tr
	}
	return opts, nil
}

// newLogger builds the process logger writing to stdout and, when a log file
// is configured, to a lumberjack-rotated file. The returned closer flushes
// the file.
func newLogger(cfg config.LogConfig, stdout io.Writer) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = stdout
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{Out: stdout, TimeFormat: "15:04:05"}
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("version", version.GetVersion()).
		Str("commit", version.GetCommit()).
		Logger()
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func run(ctx context.Context, opts *cliOptions, lookupEnv func(string) (string, bool), stdout io.Writer) error {
	cfg, err := config.LoadConfig(opts.settings)
	if err != nil {
		logger, _ := newLogger(config.Default().Log, stdout)
		logger.Error().Err(err).Str("settings", opts.settings).Msg("Failed to load configuration")
		return err
	}
	if err := opts.apply(cfg); err != nil {
		logger, _ := newLogger(config.Default().Log, stdout)
		logger.Error().Err(err).Msg("Invalid command line")
		return err
	}

	logger, closer := newLogger(cfg.Log, stdout)
	defer closer.Close()

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		logger.Error().Err(err).Msg("Missing API configuration")
		return err
	}

	pollOpts, err := opts.pollerOptions(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid query flags")
		return err
	}

	logger.Info().
		Str("endpoint", cfg.Environment.Endpoint).
		Str("state", cfg.State.Path).
		Str("retention", cfg.State.Retention).
		Bool("dry_run", pollOpts.DryRun).
		Msg("Starting prismanotify")

	client := prisma.NewClient(cfg.Environment.Endpoint, cfg.API.Timeout, logger)
	creds := prisma.Credentials{
		AccessKey: cfg.Environment.AccessKey,
		SecretKey: cfg.Environment.SecretKey,
	}
	p := poller.New(client, creds, state.NewStore(cfg.State.Path), notifier.NewNotifier(cfg.Notify, logger), pollOpts, logger)

	summary, err := p.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Poll failed")
		return err
	}

	logger.Info().
		Int("fetched", summary.Fetched).
		Int("new", summary.New).
		Int("notified", summary.Notified).
		Int("failed", summary.Failed).
		Bool("saved", summary.Saved).
		Msg("Poll complete")
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.showVersion {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, os.LookupEnv, os.Stdout)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
