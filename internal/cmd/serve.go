package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/render"
	"github.com/MeKo-Tech/pointmap/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive map page with hover tooltips",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("static-dir", "", "Directory served at /static/ (wasm_exec.js, pointmap.wasm)")
	serveCmd.Flags().Bool("wasm", false, "Run the hover handler in the browser (requires --static-dir)")
	serveCmd.Flags().String("cache-control", "public, max-age=86400", "Cache-Control header for proxied tiles")
	serveCmd.Flags().Int("workers", 4, "Concurrent base tile fetches when rendering the map")

	bindFlags(serveCmd.Flags(), []flagBinding{
		{"serve.addr", "addr"},
		{"serve.static_dir", "static-dir"},
		{"serve.wasm", "wasm"},
		{"serve.cache_control", "cache-control"},
		{"serve.workers", "workers"},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	staticDir := viper.GetString("serve.static_dir")
	wasm := viper.GetBool("serve.wasm")
	if wasm && staticDir == "" {
		return fmt.Errorf("--wasm requires --static-dir")
	}

	ms, err := mapSettingsFromConfig()
	if err != nil {
		return err
	}

	tiles, closeTiles, err := buildTileSource()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeTiles(); err != nil {
			logger.Warn("Failed to close tile cache", "error", err)
		}
	}()

	session, features, err := newSession(mapview.NewMemoryHost(ms.Size), ms, tiles)
	if err != nil {
		return err
	}

	renderer := render.New(render.Config{
		Workers:   viper.GetInt("serve.workers"),
		UserAgent: viper.GetString("tiles.user_agent"),
	}, logger)

	s, err := server.New(session, features, tiles, renderer, server.Config{
		CacheControl: viper.GetString("serve.cache_control"),
		TileTimeout:  viper.GetDuration("tiles.timeout"),
		StaticDir:    staticDir,
		WASM:         wasm,
		View:         ms.viewConfig(),
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("map server listening",
		"addr", addr,
		"features", len(features),
		"size", ms.Size,
		"zoom", ms.Zoom,
		"tiles_cache", viper.GetString("tiles.cache"),
		"wasm", wasm,
	)

	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down map server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
