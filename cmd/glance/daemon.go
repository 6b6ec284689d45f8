package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glance/internal/bridge"
	"github.com/1broseidon/glance/internal/config"
	"github.com/1broseidon/glance/internal/hotkeys"
	"github.com/1broseidon/glance/internal/ipc"
	"github.com/1broseidon/glance/internal/overlay"
	"github.com/1broseidon/glance/internal/runtimepath"
	"github.com/1broseidon/glance/internal/supervisor"
	"github.com/1broseidon/glance/internal/surface"
	"github.com/1broseidon/glance/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glance daemon [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the glance daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	debug := fs.Bool("debug", false, "Enable the inspection panel and activating focus")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	runDaemonLoop(*debug)
	return 0
}

func slogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemonLoop(debug bool) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (toggle: %s, backend: %s)", cfg.ToggleHotkey, cfg.BackendURL)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	if err := x11.EnsureDisplayEnv(cfg.Display, cfg.XAuthority); err != nil {
		log.Fatalf("Failed to resolve X display: %v", err)
	}

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	log.Println("glance daemon started successfully")

	registry := surface.NewRegistry(conn.XUtil, conn.Root, logger)
	backend := bridge.NewClient(cfg.BackendURL, cfg.RequestTimeout(), logger)

	controller := overlay.NewController(conn, registry, cfg, backend.Submit, logger, debug)
	if debug {
		if err := controller.EnableDebugPanel(); err != nil {
			log.Printf("Warning: failed to create inspection panel: %v", err)
		}
	}

	// The probe notices a surface that vanished without a DestroyNotify,
	// e.g. killed through the X server while events were lost.
	probe := func() error {
		if err := conn.Ping(); err != nil {
			return fmt.Errorf("display connection: %w", err)
		}
		win := controller.OverlayWindow()
		if win == 0 {
			return nil
		}
		if _, err := xproto.GetGeometry(conn.XUtil.Conn(), xproto.Drawable(win)).Reply(); err != nil {
			controller.SurfaceLost()
			return fmt.Errorf("overlay window %d vanished: %w", win, err)
		}
		return nil
	}

	sup := supervisor.New(supervisor.Config{
		RebuildDelay:  cfg.RecreateDelay(),
		MaxAttempts:   cfg.Recreate.MaxAttempts,
		ProbeInterval: cfg.ProbeInterval(),
		Logger:        logger,
	}, controller.TryRebuild, controller.RebuildGaveUp, probe)
	controller.SetOnSurfaceLost(sup.NotifyLost)

	// Screenshot capture, shared between the hotkey and the IPC CAPTURE
	// command.
	captureFn := func() (string, error) {
		dir, err := runtimepath.CaptureDir()
		if err != nil {
			return "", err
		}
		mon, err := conn.ActiveMonitor()
		if err != nil {
			return "", err
		}
		return conn.CaptureMonitor(mon, dir)
	}

	hotkeyHandler := hotkeys.NewHandler(conn)
	if err := hotkeyHandler.Register(cfg.ToggleHotkey, controller.Toggle); err != nil {
		log.Fatalf("Failed to register toggle hotkey: %v", err)
	}
	log.Printf("Toggle hotkey registered: %s", cfg.ToggleHotkey)

	captureCallback := func() {
		go func() {
			path, err := captureFn()
			if err != nil {
				logger.Warn("screenshot capture failed", "error", err)
				controller.HandleResult(bridge.Result{
					Success: false,
					Text:    "Screenshot capture failed.",
					Kind:    bridge.KindPlain,
					Remedy:  err.Error(),
				})
				return
			}
			controller.HandleResult(bridge.Result{
				Success: true,
				Text:    "Captured " + path,
				Kind:    bridge.KindPlain,
			})
		}()
	}
	if cfg.CaptureHotkey != "" {
		if err := hotkeyHandler.Register(cfg.CaptureHotkey, captureCallback); err != nil {
			log.Printf("Warning: failed to register capture hotkey: %v", err)
		} else {
			log.Printf("Capture hotkey registered: %s", cfg.CaptureHotkey)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go backend.RunHealthPoller(ctx, cfg.HealthInterval())
	go sup.Run(ctx)

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(cfg, controller, backend, captureFn, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	applyConfig := func(newCfg *config.Config) {
		controller.UpdateConfig(newCfg)
		backend.SetTimeout(newCfg.RequestTimeout())

		// Rebind hotkeys when the sequences changed.
		if newCfg.ToggleHotkey != cfg.ToggleHotkey || newCfg.CaptureHotkey != cfg.CaptureHotkey {
			hotkeyHandler.Unregister()
			if err := hotkeyHandler.Register(newCfg.ToggleHotkey, controller.Toggle); err != nil {
				log.Printf("Failed to rebind toggle hotkey: %v", err)
			}
			if newCfg.CaptureHotkey != "" {
				if err := hotkeyHandler.Register(newCfg.CaptureHotkey, captureCallback); err != nil {
					log.Printf("Failed to rebind capture hotkey: %v", err)
				}
			}
		}
		cfg = newCfg
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					ipcServer.UpdateConfig(newCfg)
					applyConfig(newCfg)
					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down glance daemon...")
					cancel()
					sup.Stop()
					hotkeyHandler.Unregister()
					ipcServer.Stop()
					controller.Shutdown()
					conn.StopEventLoop()
					os.Exit(0)
				}

			case <-reloadChan:
				// Config was reloaded via IPC; pick it up from the server.
				applyConfig(ipcServer.GetConfig())
			}
		}
	}()

	log.Println("Entering event loop...")
	conn.EventLoop()
}
