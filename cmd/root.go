package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2genv/app"
	"github.com/kilianp07/v2genv/config"
	coremon "github.com/kilianp07/v2genv/core/monitoring"
	"github.com/kilianp07/v2genv/infra/logger"
	"github.com/kilianp07/v2genv/infra/monitoring"
	"github.com/kilianp07/v2genv/pkg/export"
)

var (
	cfgPath     string
	format      string
	withSummary bool
)

var rootCmd = &cobra.Command{
	Use:          "v2genv",
	Short:        "Single-vehicle V2G simulation environment",
	Long:         "Runs the configured agent against the V2G environment for the configured number of days.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); built-in defaults when empty")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text, csv, json or html")
	rootCmd.Flags().BoolVar(&withSummary, "summary", true, "print a run summary after text output")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads cfgPath, or returns the defaults when no file was given.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		cfg := &config.Config{}
		cfg.SetDefaults()
		return cfg, cfg.Validate()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setup configures logging and error reporting. The returned function
// flushes pending reports.
func setup(cfg *config.Config) (func(), error) {
	if err := logger.Configure(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	}); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	return func() { coremon.Flush(2 * time.Second) }, nil
}

func newService(cfg *config.Config, opts ...app.Option) (*app.Service, func(), error) {
	flush, err := setup(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.New(cfg, opts...)
	if err != nil {
		flush()
		return nil, nil, err
	}
	return svc, func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
		flush()
	}, nil
}

func run(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := newService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { coremon.Recover(recover()) }()

	report, err := svc.Run(ctx)
	if err != nil && report == nil {
		return err
	}
	ts := report.Transitions()
	out := cmd.OutOrStdout()
	if werr := export.Write(out, f, ts); werr != nil {
		return werr
	}
	if f == export.FormatText && withSummary {
		if werr := export.WriteSummary(out, export.Summarize(ts)); werr != nil {
			return werr
		}
	}
	return err
}
