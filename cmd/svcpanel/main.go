package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/modoterra/svcpanel/internal/buildinfo"
	"github.com/modoterra/svcpanel/pkg/factory"
	"github.com/modoterra/svcpanel/pkg/logging"
	"github.com/modoterra/svcpanel/pkg/pager"
	"github.com/modoterra/svcpanel/pkg/runner"
	"github.com/modoterra/svcpanel/pkg/settings"
	tuimodel "github.com/modoterra/svcpanel/pkg/tui/model"
)

var (
	settingsPath string
	logFile      string
	logLevel     string
	logFormat    string
	logJournal   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "svcpanel",
	Short:        "Status panel for systemd, cron, Docker and Podman",
	Long:         "svcpanel aggregates the state of the host's service managers and lets you start, stop, restart, enable and disable units from a popup menu.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file (default $XDG_CONFIG_HOME/svcpanel/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file, - for stderr (default $XDG_STATE_HOME/svcpanel/svcpanel.log)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&logJournal, "journal", false, "log to the systemd journal when available")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(settingsCmd)
	for _, verb := range actionVerbs {
		rootCmd.AddCommand(newActionCmd(verb))
	}
}

// env is what every command needs once flags are parsed.
type env struct {
	logger   *slog.Logger
	settings *settings.Store
	factory  *factory.Factory
	pager    *pager.Pager
	closer   io.Closer
}

func setup() (*env, error) {
	path := logFile
	if path == "" {
		p, err := logging.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	logger, closer, err := logging.New(logging.Options{
		File:    path,
		Level:   logLevel,
		Format:  logFormat,
		Journal: logJournal,
	})
	if err != nil {
		return nil, err
	}

	store, err := loadSettings(logger)
	if err != nil {
		closer.Close()
		return nil, err
	}

	sh := runner.New(logger.With("component", "runner"))
	return &env{
		logger:   logger,
		settings: store,
		factory:  factory.New(sh, store, logger),
		pager:    pager.New(store),
		closer:   closer,
	}, nil
}

func loadSettings(logger *slog.Logger) (*settings.Store, error) {
	path := settingsPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return settings.Load(path, logger.With("component", "settings"))
}

// --- Root: TUI ---

func runTUI(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := tuimodel.NewScheduler()
	app := tuimodel.New(tuimodel.Config{
		Factory:   e.factory,
		Pager:     e.pager,
		Scheduler: sched,
		Logger:    e.logger.With("component", "tui"),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	sched.Bind(p)

	stopWatch, err := e.settings.Watch(ctx, func() { p.Send(tuimodel.SettingsChangedMsg{}) })
	if err != nil {
		e.logger.Warn("settings watch unavailable", "err", err)
	} else {
		defer func() {
			if err := stopWatch(); err != nil {
				e.logger.Warn("stop settings watch", "err", err)
			}
		}()
	}

	e.logger.Info("starting", "version", buildinfo.Version)
	_, err = p.Run()
	return err
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "svcpanel %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}
