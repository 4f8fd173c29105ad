// Sharkdb server is the entrypoint for the sharkdb multi-table ordered KV
// store. It parses flags (HTTP address, data directory, auth, rate limits),
// wires the engine and HTTP server, and runs until SIGINT/SIGTERM; then it
// drains the HTTP server and closes the engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/BibekPathak/shark-db/internal/catalog"
	"github.com/BibekPathak/shark-db/internal/config"
	"github.com/BibekPathak/shark-db/internal/engine"
	"github.com/BibekPathak/shark-db/internal/persistence"
	"github.com/BibekPathak/shark-db/internal/server"
	"github.com/BibekPathak/shark-db/pkg/log"
)

func main() {
	cfg := config.Default()
	if err := cfg.ParseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	format := log.ConsoleFormat
	if cfg.LogJSON {
		format = log.JSONFormat
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(log.Options{Level: level, Format: format})

	opts := engine.Options{SnapshotOnClose: cfg.SnapshotOnShutdown}
	if cfg.DataPath != "" {
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "data dir: %v\n", err)
			os.Exit(1)
		}
		cat, err := catalog.Open(cfg.CatalogPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
			os.Exit(1)
		}
		opts.Catalog = cat
		opts.Snapshots = persistence.NewSnapshotter(afero.NewOsFs(), cfg.SnapshotDir())
	}

	eng := engine.New(opts)
	if cfg.Restore {
		if err := eng.Restore(); err != nil {
			fmt.Fprintf(os.Stderr, "restore: %v\n", err)
			os.Exit(1)
		}
	}

	srv := server.New(eng, cfg)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Root.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if err := eng.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
		os.Exit(1)
	}
}
