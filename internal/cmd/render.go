package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map view (base tiles, markers, labels) to a PNG file",
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("output", "o", "map.png", "Output PNG path")
	renderCmd.Flags().IntP("workers", "w", 4, "Concurrent base tile fetches")
	renderCmd.Flags().Duration("timeout", 2*time.Minute, "Overall render timeout")

	bindFlags(renderCmd.Flags(), []flagBinding{
		{"render.output", "output"},
		{"render.workers", "workers"},
		{"render.timeout", "timeout"},
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	output := viper.GetString("render.output")

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

	session, _, err := newSession(mapview.NewMemoryHost(ms.Size), ms, tiles)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("render.timeout"))
	defer cancel()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	renderer := render.New(render.Config{
		Workers:   viper.GetInt("render.workers"),
		UserAgent: viper.GetString("tiles.user_agent"),
	}, logger)
	if err := renderer.RenderPNG(ctx, session, w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logger.Info("Rendered map", "output", output, "size", ms.Size, "zoom", ms.Zoom)
	return nil
}
