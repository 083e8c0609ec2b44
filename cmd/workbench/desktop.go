package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/1broseidon/workbench/internal/auth"
	"github.com/1broseidon/workbench/internal/config"
	"github.com/1broseidon/workbench/internal/desktop"
	"github.com/1broseidon/workbench/internal/feed"
	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/ipc"
	"github.com/1broseidon/workbench/internal/logging"
	"github.com/1broseidon/workbench/internal/registry"
	"github.com/1broseidon/workbench/internal/sounds"
	"github.com/1broseidon/workbench/internal/state"
	"github.com/1broseidon/workbench/internal/viewport"
	"github.com/1broseidon/workbench/internal/wm"
)

func runDesktop(args []string) int {
	fs := newFlagSet("desktop", "desktop", "Start the desktop in this terminal. Logs go to the configured log file.")
	if code, ok := parse(fs, args, 0); !ok {
		return code
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "desktop needs an interactive terminal")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger, err := logging.New(logging.FromConfig(cfg.Logging, logPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := serveDesktop(cfg, logger); err != nil {
		logger.Error("desktop stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func serveDesktop(cfg *config.Config, logger *zap.Logger) error {
	statePath, err := cfg.StatePath()
	if err != nil {
		return err
	}
	store := state.NewFileStore(statePath)

	changes := desktop.NewChanges()
	player := sounds.NewPlayer(os.Stdout, cfg.Sounds, logger.Named("sounds"))
	defer player.Wait()

	mgr := wm.New(store,
		wm.WithNotifier(player),
		wm.WithLogger(logger.Named("wm")),
		wm.WithOnChange(changes.Notify),
	)
	observer := viewport.NewObserver(mgr)

	catalog := registry.Default()
	server, err := ipc.NewServer("", mgr, observer,
		ipc.WithCatalog(catalog),
		ipc.WithLogger(logger.Named("ipc")),
	)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return fmt.Errorf("a desktop is already running on %s", server.SocketPath())
		}
		return err
	}
	defer server.Stop()

	opts := desktop.Options{
		Manager:       mgr,
		Observer:      observer,
		Programs:      catalog.Programs(),
		Sounds:        player,
		Changes:       changes,
		Logger:        logger.Named("desktop"),
		Cell:          geom.Size{Width: cfg.CellWidth, Height: cfg.CellHeight},
		IconColumns:   cfg.IconColumns,
		FrameInterval: time.Duration(cfg.FrameIntervalMS) * time.Millisecond,
	}
	if cfg.Feed.Enabled {
		opts.Feed = feed.NewClient(cfg.Feed.URL,
			feed.WithReconnect(time.Duration(cfg.Feed.ReconnectSeconds)*time.Second),
			feed.WithLogger(logger.Named("feed")),
			feed.WithOnChange(changes.Notify),
		)
	}
	if cfg.Auth.Enabled {
		signer, err := auth.ParseCommandSigner(cfg.Auth.SignerCommand)
		if err != nil {
			return err
		}
		session, err := auth.NewSession(cfg.Auth, signer, logger.Named("auth"))
		if err != nil {
			return err
		}
		opts.Session = session
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("desktop starting",
		zap.String("state", statePath),
		zap.Int("programs", len(opts.Programs)),
		zap.Bool("feed", cfg.Feed.Enabled),
		zap.Bool("auth", cfg.Auth.Enabled),
	)
	return desktop.Run(ctx, opts)
}
