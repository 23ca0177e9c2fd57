package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/config"
	"github.com/businesscomms/bcctl/internal/credentials"
	"github.com/businesscomms/bcctl/internal/ledger"
)

// version is set at build time via ldflags.
var version = "dev"

// flags are the persistent flags shared by every subcommand.
type flags struct {
	configPath  string
	credentials string
	endpoint    string
	delay       time.Duration
	json        bool
	verbose     bool
	quiet       bool
}

// app carries everything subcommands share: parsed flags, the resolved
// configuration, and the credential manager. It replaces package-level
// state so tests can build as many independent roots as they like.
type app struct {
	flags flags

	stdout io.Writer
	stderr io.Writer

	cfg     *config.Resolved
	logger  *slog.Logger
	manager *credentials.Manager
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// skipConfigCommands lists commands that must work even when the config
// file is broken.
var skipConfigCommands = map[string]bool{
	"bcctl config init": true,
}

// newRootCmd builds the fully-assembled root command with all subcommands
// registered.
func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bcctl",
		Short:   "Business Communications API client",
		Long:    "Manage Business Communications brands, agents, and locations, and replay the guided API walkthroughs.",
		Version: version,
		// Errors are printed once, by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfigCommands[cmd.CommandPath()] {
				a.logger = a.bootstrapLogger()

				return nil
			}

			return a.loadConfig(cmd)
		},
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file path")
	pf.StringVar(&a.flags.credentials, "credentials", "", "service-account credentials file")
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "API base URL")
	pf.DurationVar(&a.flags.delay, "delay", 0, "pause between walkthrough calls (default from config)")
	pf.BoolVar(&a.flags.json, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(a.newBrandCmd())
	cmd.AddCommand(a.newAgentCmd())
	cmd.AddCommand(a.newLocationCmd())
	cmd.AddCommand(a.newCleanupCmd())
	cmd.AddCommand(a.newTwinCmd())
	cmd.AddCommand(a.newAuthCmd())
	cmd.AddCommand(a.newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and builds the logger and credential manager from it.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath:      a.flags.configPath,
		CredentialsFile: a.flags.credentials,
		Endpoint:        a.flags.endpoint,
	}

	// --delay=0 is meaningful, so only pass it when it was given.
	if cmd.Flags().Changed("delay") {
		d := a.flags.delay
		cli.Delay = &d
	}

	resolved, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a.cfg = resolved
	a.logger = a.buildLogger()
	a.manager = credentials.NewManager(credentials.ManagerConfig{
		DefaultPath: resolved.CredentialsFile,
		Endpoint:    resolved.Endpoint,
		HTTPClient:  &http.Client{Timeout: resolved.Timeout},
		Logger:      a.logger,
		ClientOptions: []bcapi.Option{
			bcapi.WithUserAgent(resolved.UserAgent),
			bcapi.WithRateLimit(resolved.RequestsPerSecond),
		},
	})

	a.logger.Debug("config resolved",
		slog.String("config_path", resolved.ConfigPath),
		slog.String("endpoint", resolved.Endpoint),
		slog.String("credentials_file", resolved.CredentialsFile),
	)

	return nil
}

// logLevel maps the config level and the -v/-q flags to a slog level. Flags
// win over config.
func (a *app) logLevel() slog.Level {
	level := slog.LevelWarn

	if a.cfg != nil {
		switch a.cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
	}

	if a.flags.verbose {
		level = slog.LevelDebug
	}

	if a.flags.quiet {
		level = slog.LevelError
	}

	return level
}

// buildLogger creates the text logger on stderr used by every component.
func (a *app) buildLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: a.logLevel()}))
}

// bootstrapLogger is used before flags and config are parsed.
func (a *app) bootstrapLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// client returns the authorized API client for the configured credentials
// file, performing the handshake on first use.
func (a *app) client(ctx context.Context) (*bcapi.Client, error) {
	h, err := a.manager.Acquire(ctx, "")
	if err != nil {
		return nil, err
	}

	return h.API, nil
}

// openLedger opens the resource ledger scoped to the configured endpoint.
func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, error) {
	return ledger.Open(ctx, a.cfg.LedgerPath, a.cfg.Endpoint, a.logger)
}

// statusf prints a status message to stderr unless quiet mode is set.
func (a *app) statusf(format string, args ...any) {
	if !a.flags.quiet {
		fmt.Fprintf(a.stderr, format, args...)
	}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
