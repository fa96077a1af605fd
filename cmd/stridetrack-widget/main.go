// stridetrack-widget is the widget-side process: it reads the shared
// snapshot store and emits the current timeline entry as JSON. It never
// talks to the database; a missing or stale snapshot renders placeholder
// data so the complication always has something to show.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/stridetrack/stridetrack/internal/bridge"
	"github.com/stridetrack/stridetrack/internal/config"
	"github.com/stridetrack/stridetrack/internal/widget"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := openSnapshotStore(cfg.Bridge)
	if err != nil {
		log.Error("opening snapshot store failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	provider := widget.NewTimelineProvider(store, log)
	entry := provider.Entry(context.Background())

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "encoding entry: %v\n", err)
		os.Exit(1)
	}
}

func openSnapshotStore(cfg config.BridgeConfig) (bridge.SnapshotStore, error) {
	switch cfg.Backend {
	case "redis":
		return bridge.OpenRedis(cfg.Addr, cfg.Password, cfg.DB)
	default:
		return bridge.OpenSQLite(cfg.Path)
	}
}
