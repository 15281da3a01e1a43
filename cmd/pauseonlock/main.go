package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"pauseonlock/config"
	"pauseonlock/internal/logging"
	"pauseonlock/internal/monitor"
	"pauseonlock/internal/player"
	"pauseonlock/internal/plugin"
	"pauseonlock/internal/session"
	"pauseonlock/internal/storage/sqlite"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.StringP("config", "c", "", "Path to a JSON or TOML config file (default: XDG config dir)")
	backend := flag.StringP("player", "p", "", "Player backend: mpris or mpd")
	sourceKind := flag.StringP("source", "s", "", "Session source: wts, logind, screensaver or signal")
	journalPath := flag.String("journal", "", "Record lock/unlock transitions to this SQLite file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "", "Log format: json or text")
	logPath := flag.String("log-path", "", "Log file path (stdout if empty)")
	history := flag.IntP("history", "n", 0, "Print the last N journal entries and exit")
	showVersion := flag.BoolP("version", "v", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("pauseonlock", version)
		return nil
	}

	// Configuration precedence: file, then environment, then flags
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if flag.CommandLine.Changed("player") {
		cfg.Player.Backend = *backend
	}
	if flag.CommandLine.Changed("source") {
		cfg.Session.Source = *sourceKind
	}
	if flag.CommandLine.Changed("journal") {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = *journalPath
	}
	if flag.CommandLine.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if flag.CommandLine.Changed("log-format") {
		cfg.Log.Format = *logFormat
	}
	if flag.CommandLine.Changed("log-path") {
		cfg.Log.Path = *logPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *history > 0 {
		return printHistory(os.Stdout, cfg.Journal.Path, *history)
	}

	// Setup logging
	out, closeLog, err := logging.OpenLogFile(cfg.Log.Path)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: cfg.Log.Format,
		Level:  logging.ParseLevel(cfg.Log.Level),
		Output: out,
	})
	slog.SetDefault(logger)

	mainLogger := logger.With("component", "main")
	mainLogger.Info("pauseonlock starting",
		"version", version,
		"player", cfg.Player.Backend,
		"source", cfg.Session.Source,
		"journal", cfg.Journal.Enabled,
	)

	// Register player backends
	registry := player.NewRegistry()
	if err := registry.Register(player.NewMPD(player.MPDConfig{
		Network:  cfg.Player.MPD.Network,
		Address:  cfg.Player.MPD.Address,
		Password: cfg.Player.MPD.Password,
	}, logger)); err != nil {
		return err
	}

	mpris, err := player.NewMPRIS(cfg.Player.MPRIS.Instance, logger)
	if err != nil {
		mainLogger.Debug("MPRIS backend unavailable", "error", err)
	} else {
		defer mpris.Close()
		if err := registry.Register(mpris); err != nil {
			return err
		}
	}

	active, err := registry.Get(cfg.Player.Backend)
	if err != nil {
		mainLogger.Error("Player backend unavailable",
			"backend", cfg.Player.Backend,
			"available", registry.List(),
		)
		return err
	}

	source, err := session.NewPlatformSource(cfg.Session.Source, logger)
	if err != nil {
		return err
	}

	monitorOpts := []monitor.Option{monitor.WithCallTimeout(cfg.CallTimeout())}

	if cfg.Journal.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0755); err != nil {
			return fmt.Errorf("failed to create journal directory: %w", err)
		}
		journal, err := sqlite.New(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
		monitorOpts = append(monitorOpts, monitor.WithRecorder(journal))
	}

	// This binary plays the host: it owns the plugin's lifecycle.
	p := plugin.New(
		logging.NewPlayerLogger(active, logger),
		source,
		logger,
		plugin.WithMonitorOptions(monitorOpts...),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := p.Initialise(ctx); err != nil {
		return err
	}
	p.ReceiveNotification(ctx, "", plugin.PluginStartup)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	mainLogger.Info("Shutdown signal received", "signal", sig.String())

	if err := p.Close(plugin.CloseHostShutdown); err != nil {
		mainLogger.Warn("plugin close failed", "error", err)
	}

	mainLogger.Info("pauseonlock stopped")
	return nil
}

func printHistory(w io.Writer, path string, limit int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("journal not found at %s: %w", path, err)
	}

	journal, err := sqlite.New(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	transitions, err := journal.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	for _, t := range transitions {
		line := fmt.Sprintf("%s  %-7s  %-8s  %-7s  player=%s",
			t.At.Local().Format("2006-01-02 15:04:05"),
			t.Reason,
			t.ObservedState,
			t.Action,
			t.Player,
		)
		if t.Failed() {
			line += "  error=" + t.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
