// Package cli provides the command-line interface for mark.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/config"
	"github.com/billie-coop/mark/internal/logging"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// state holds what PersistentPreRunE builds for the subcommands.
type state struct {
	cfgFile string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	registry  *prometheus.Registry
	metrics   *http.Server
	app       *app.App
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&state{})
}

func newRootCmd(rt *state) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mark",
		Short: "MARK - ML Artifact Repository Knowledge front end",
		Long: `mark drives the MARK analysis backend from the terminal.

It validates project folders, starts analyses and follows their progress,
browses the classified results, shows the analytics dashboard and talks to
the LLM assistant about an analyzed project.

Run without a subcommand in a terminal to open the interactive UI.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipSetup(cmd) {
				return nil
			}
			return rt.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return cmd.Help()
			}
			return runTUI(cmd, rt)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rt.cfgFile, "config", "", "config file (default: ./mark.yaml)")
	pf.String("base-url", "", "backend base URL")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.String("log-file", "", "log file for the interactive UI")
	pf.StringP("output", "o", "", "output format (text|json)")
	pf.String("theme", "", "color theme of the interactive UI (mark|light)")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address")
	pf.String("state-file", "", "remember the last analyzed folders in this file")
	pf.Duration("poll-interval", 0, "interval between job status checks")
	pf.Int("max-polls", 0, "give up after this many status checks (0 = never)")
	pf.Duration("request-timeout", 0, "HTTP request timeout (0 = none)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.Themes, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newTUICommand(rt),
		newAnalyzeCommand(rt),
		newJobsCommand(rt),
		newValidateCommand(rt),
		newResultsCommand(rt),
		newAnalyticsCommand(rt),
		newChatCommand(rt),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &state{}
	defer rt.close()

	if err := newRootCmd(rt).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete", "version":
		return true
	}
	return false
}

// usesTerminalUI reports whether cmd takes over the terminal, in which case
// logs go to the log file instead of stderr.
func usesTerminalUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || (!cmd.HasParent() && isTerminal(cmd.OutOrStdout()))
}

func (rt *state) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	rt.cfg = cfg

	if usesTerminalUI(cmd) {
		logger, closer, err := logging.NewFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		rt.logger, rt.logCloser = logger, closer
	} else {
		rt.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	}
	if cfg.FileUsed != "" {
		rt.logger.Debug("using config file", "path", cfg.FileUsed)
	}

	var reg prometheus.Registerer
	if cfg.MetricsAddr != "" {
		rt.registry = prometheus.NewRegistry()
		reg = rt.registry
		rt.metrics = serveMetrics(cfg.MetricsAddr, rt.registry, rt.logger)
	}

	rt.app = app.New(cfg, rt.logger, reg)
	return nil
}

func (rt *state) close() {
	if rt.app != nil {
		rt.app.Close()
	}
	if rt.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = rt.metrics.Shutdown(ctx)
		cancel()
	}
	if rt.logCloser != nil {
		_ = rt.logCloser.Close()
	}
}

// printer returns an output printer for cmd in the configured format.
func (rt *state) printer(cmd *cobra.Command) *printer {
	format := config.OutputText
	if rt.cfg != nil {
		format = rt.cfg.Output
	}
	return newPrinter(cmd.OutOrStdout(), format)
}
