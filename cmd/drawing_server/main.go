package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/tv_drawings/internal/api"
	"github.com/dgnsrekt/tv_drawings/internal/config"
	"github.com/dgnsrekt/tv_drawings/internal/controller"
	"github.com/dgnsrekt/tv_drawings/internal/drawstore"
	"github.com/dgnsrekt/tv_drawings/internal/events"
	"github.com/dgnsrekt/tv_drawings/internal/journal"
	"github.com/dgnsrekt/tv_drawings/internal/netutil"
	"github.com/dgnsrekt/tv_drawings/internal/remotesync"
	"github.com/dgnsrekt/tv_drawings/internal/session"
	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
	"github.com/dgnsrekt/tv_drawings/internal/tvsync"
)

const journalBufferSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load drawing server config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("drawing_server config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"cache_backend", cfg.CacheBackend,
		"save_debounce_ms", cfg.SaveDebounceMS,
		"sync_url", cfg.SyncURL,
		"journal_dir", cfg.JournalDir,
		"tv_sync", cfg.TVSync,
		"snapshot_dir", cfg.SnapshotDir,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	styles, err := config.LoadStyles(cfg.StylesFile)
	if err != nil {
		slog.Error("failed to load drawing styles", "file", cfg.StylesFile, "error", err)
		os.Exit(1)
	}

	store, err := drawstore.Open(cfg.CacheBackend, cfg.CacheDir, cfg.CacheDB)
	if err != nil {
		slog.Error("failed to open drawing cache", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Debug("drawing cache close failed", "error", err)
		}
	}()

	var targets []remotesync.Target
	if cfg.SyncURL != "" {
		syncer := remotesync.NewHTTPSyncer(cfg.SyncURL, &http.Client{Timeout: cfg.SyncTimeout()})
		targets = append(targets, remotesync.Target{Name: "http", Save: syncer.Save, Timeout: cfg.SyncTimeout()})
	}

	var jw *journal.Writer
	var scheduler *cron.Cron
	if cfg.JournalDir != "" {
		jw = journal.NewWriter(cfg.JournalDir, journalBufferSize, cfg.JournalMaxMB)
		targets = append(targets, remotesync.Target{Name: "journal", Save: jw.Save})

		scheduler = cron.New(cron.WithSeconds())
		if _, err := scheduler.AddFunc(cfg.JournalRotateCron, func() {
			if err := jw.Rotate(); err != nil {
				slog.Warn("journal rotation failed", "error", err)
				return
			}
			slog.Info("journal rotated", "dir", cfg.JournalDir)
		}); err != nil {
			slog.Error("invalid journal rotation schedule", "cron", cfg.JournalRotateCron, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	var tv *tvsync.Syncer
	if cfg.TVSync {
		tv = tvsync.New(cfg.CDPURL(), cfg.TabURLFilter, cfg.SyncTimeout())
		targets = append(targets, remotesync.Target{Name: "tradingview", Save: tv.Save, Timeout: cfg.SyncTimeout()})
	}

	fanout := remotesync.NewFanout(targets...)
	broker := events.NewBroker()
	registry := session.NewRegistry(session.Config{
		Viewport:    defaultViewport(cfg, time.Now()),
		Theme:       surface.DarkTheme,
		Cache:       store,
		OnSave:      fanout.Save,
		Debounce:    cfg.SaveDebounce(),
		SyncTimeout: cfg.SyncTimeout(),
		Styles:      styles,
		Broker:      broker,
	})

	var snaps *snapshot.Store
	if cfg.SnapshotDir != "" {
		snaps, err = snapshot.NewStore(cfg.SnapshotDir)
		if err != nil {
			slog.Error("failed to create snapshot store", "dir", cfg.SnapshotDir, "error", err)
			os.Exit(1)
		}
	}

	svc := controller.NewService(registry, store, snaps)
	h := api.NewServer(svc, api.Options{Broker: broker, RequestTimeout: cfg.SessionTimeout()})

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("drawing_server listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs", "sync_targets", fanout.Len())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("drawing_server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	broker.CloseAll()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("drawing_server shutdown failed", "error", err)
	}

	// Sessions flush pending syncs on close, so sync targets stay open until
	// every session is gone.
	registry.CloseAll()
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if jw != nil {
		if err := jw.Close(); err != nil {
			slog.Debug("journal close failed", "error", err)
		}
	}
	if tv != nil {
		if err := tv.Close(); err != nil {
			slog.Debug("tradingview sync close failed", "error", err)
		}
	}
}

// defaultViewport is used for sessions opened without an explicit viewport:
// the last day of one-minute bars.
func defaultViewport(cfg *config.Config, now time.Time) surface.Viewport {
	to := now.Unix() - now.Unix()%60
	return surface.Viewport{
		From:     to - 24*60*60,
		To:       to,
		Interval: 60,
		MinPrice: 0,
		MaxPrice: 1000,
		Width:    cfg.SurfaceWidth,
		Height:   cfg.SurfaceHeight,
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
