package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dt-pm-tools/lh2gh/internal/config"
	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/migrate"
	"github.com/dt-pm-tools/lh2gh/internal/ui"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	appConfig config.Config
	verbose   bool
	startAt   int
	version   = "0.1.0"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("migration aborted")

var rootCmd = &cobra.Command{
	Use:   "lh2gh",
	Short: "Migrate Lighthouse tickets to GitHub Issues",
	Long: `Copies every ticket of a Lighthouse project into a GitHub repository,
keeping ticket numbers equal to issue numbers. Milestones are created first,
deleted tickets become closed placeholder issues, history entries and
attachments become comments, and resolved tickets are closed.

Run 'lh2gh config' once to store credentials, then run 'lh2gh' with no
arguments to migrate.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if cmd.Flags().Changed("start") {
			appConfig.StartingTicket = startAt
		}

		console := ui.NewConsole(os.Stdout, ui.ShouldUseColor(os.Stdout))

		source := lighthouse.NewClient(appConfig.Lighthouse)
		source.OnPage = func(page, found int) { console.Mark(found > 0) }

		m := migrate.New(source, github.NewClient(appConfig.GitHub), migrationOptions(appConfig), console)

		report, err := m.Run(cmd.Context())
		if err != nil {
			console.Fatal(err, report.LastSlot)
			console.Summary(report)
			return errReported
		}

		console.Done(report)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.lh2gh.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every API request to stderr")
	rootCmd.Flags().IntVar(&startAt, "start", 1, "first ticket number to migrate (overrides starting_ticket)")
}

// loadConfig loads and validates configuration. Commands that need API access call this.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w\nRun 'lh2gh config' to set up credentials", err)
	}
	appConfig = cfg
	return nil
}

func migrationOptions(cfg config.Config) migrate.Options {
	return migrate.Options{
		StartingTicket: cfg.StartingTicket,
		Delay:          cfg.RequestDelay,
		MaxRetries:     cfg.MaxRetries,
		Mapping:        mapperConfig(cfg),
	}
}

func mapperConfig(cfg config.Config) migrate.MapperConfig {
	return migrate.MapperConfig{
		KeepLabels:     cfg.KeepLabels,
		MigrationLabel: cfg.MigrationLabel,
		Assignees:      cfg.Assignees,
		Location:       cfg.Location(),
	}
}
