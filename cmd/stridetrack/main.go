package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stridetrack/stridetrack/internal/activity"
	"github.com/stridetrack/stridetrack/internal/bridge"
	"github.com/stridetrack/stridetrack/internal/config"
	"github.com/stridetrack/stridetrack/internal/ingest/healthsync"
	"github.com/stridetrack/stridetrack/internal/mcp"
	"github.com/stridetrack/stridetrack/internal/messaging"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/server"
	"github.com/stridetrack/stridetrack/internal/state"
	"github.com/stridetrack/stridetrack/internal/storage"
	"github.com/stridetrack/stridetrack/internal/tracker"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// stateRefreshInterval drives the periodic recompute of weekly progress
// and streaks, independent of ingest-triggered refreshes.
const stateRefreshInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("StrideTrack starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Single-user deployment: resolve the owner row and seed goals
	userID, err := db.GetOrCreateUser(ctx, "owner", "Owner")
	if err != nil {
		log.Error("resolving user failed", "error", err)
		os.Exit(1)
	}
	defaults := []models.CategoryGoal{
		{Category: models.CategoryStrength, WeeklyTarget: cfg.Goals.Strength},
		{Category: models.CategoryCardio, WeeklyTarget: cfg.Goals.Cardio},
		{Category: models.CategoryRecovery, WeeklyTarget: cfg.Goals.Recovery},
	}
	if err := db.SeedDefaultGoals(ctx, userID, defaults); err != nil {
		log.Error("seeding goals failed", "error", err)
		os.Exit(1)
	}

	// Core services
	store := state.NewStore()
	source := activity.NewCached(activity.NewDBSource(db, userID))
	svc := tracker.New(db, source, store, userID, cfg.Goals.StepsGoal, log)

	// Widget snapshot bridge
	snapStore, err := openSnapshotStore(cfg.Bridge)
	if err != nil {
		log.Error("opening snapshot store failed", "error", err)
		os.Exit(1)
	}
	defer snapStore.Close()

	refresher := bridge.NewRefresher(snapStore, svc.Snapshot, cfg.Bridge.RefreshInterval, log)
	svc.AttachSaver(refresher)
	go refresher.Run(ctx)

	// Companion messaging
	bus := messaging.NewBus()
	hub := messaging.NewHub(bus, store, log)
	go hub.Run(ctx)
	go svc.RunCommands(ctx, bus)

	// Initial state + periodic recompute (catches week rollovers)
	if err := svc.Refresh(ctx); err != nil {
		log.Warn("initial refresh failed", "error", err)
	}
	go func() {
		ticker := time.NewTicker(stateRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := svc.Refresh(ctx); err != nil {
					log.Warn("periodic refresh failed", "error", err)
				}
			}
		}
	}()

	// HTTP surface
	syncProvider := healthsync.NewProvider(db, log)
	auth := server.AuthConfig{
		APIKey:    cfg.Auth.APIKey,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	}
	srv := server.New(db, syncProvider, svc, hub, auth, userID, log)

	mcpSrv := mcp.New(db, svc.Snapshot, Version, log)
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))
	mux.Handle("/", srv)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "plain HTTP (no tailscale)")
	}

	httpSrv := &http.Server{Handler: mux}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func openSnapshotStore(cfg config.BridgeConfig) (bridge.SnapshotStore, error) {
	switch cfg.Backend {
	case "redis":
		return bridge.OpenRedis(cfg.Addr, cfg.Password, cfg.DB)
	default:
		return bridge.OpenSQLite(cfg.Path)
	}
}
