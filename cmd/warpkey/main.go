package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petems/warpkey/internal/action"
	"github.com/petems/warpkey/internal/app"
	"github.com/petems/warpkey/internal/apps"
	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/logging"
	"github.com/petems/warpkey/internal/notify"
	"github.com/petems/warpkey/internal/permissions"
	"github.com/petems/warpkey/internal/tap"
	"github.com/petems/warpkey/internal/tray"
	"github.com/petems/warpkey/internal/windows"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "warpkey",
		Short: "Global hotkeys for apps, files, URLs, and scripts",
		Long: "warpkey intercepts key events system-wide and fires bindings on press,\n" +
			"double press, triple press, or hold. Run with no arguments to start the\n" +
			"tray daemon.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
	root.AddCommand(cheatsheetCmd(), conflictsCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// systemPermissions routes the accessibility checks the app consults.
type systemPermissions struct{}

func (systemPermissions) CanMonitor() bool { return permissions.CanMonitor() }
func (systemPermissions) Prompt() bool     { return permissions.Prompt() }

func runDaemon() error {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	launcher := apps.New()
	notifier := notify.New(log)

	dispatcher := action.NewDispatcher(action.Params{
		Apps:        launcher,
		Cycler:      windows.NewCycler(windows.NewIntrospector()),
		Notifier:    notifier,
		AppDebounce: cfg.Engine.AppDebounce(),
		Logger:      log,
	})

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, Version, Commit) // App reference set below

	application := app.New(app.Params{
		Tap:        tap.New(log),
		Apps:       launcher,
		Dispatcher: dispatcher,
		Config:     cfg,
		ConfigPath: config.Path(),
		Perms:      systemPermissions{},
		Notifier:   notifier,
		Logger:     log,
		Status:     trayUI,
	})

	// Set app reference in tray
	trayUI.SetApp(application)

	// Reload bindings when the config file changes on disk
	watcher, err := config.Watch(config.Path(), log)
	if err != nil {
		log.Warn().Err(err).Msg("Config watching unavailable")
	} else {
		defer watcher.Close()
		go func() {
			for range watcher.Changes {
				if err := application.ReloadConfig(); err != nil {
					log.Error().Err(err).Msg("Reload after file change failed")
				}
			}
		}()
	}

	if err := application.Start(); err != nil {
		if !errors.Is(err, app.ErrNotMonitoring) {
			return err
		}
		// Keep running; the tray shows blocked and offers a re-check.
		permissions.Prompt()
		log.Warn().Msg("Waiting for accessibility permission")
	}

	log.Info().Str("version", Version).Msg("WarpKey starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		if err := application.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	return trayUI.Run(ctx)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("warpkey %s (%s)\n", Version, Commit)
		},
	}
}
