package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/MeKo-Tech/pointmap/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pointmap",
	Short: "An interactive map of named points with hover tooltips",
	Long: `pointmap shows a fixed set of named points on an OpenStreetMap base map.

Each point carries a label placed on its anchor side, and hovering a point shows
its name in a tooltip. The map can be served as a web page, rendered to PNG, or
its base tiles seeded into an MBTiles cache for offline use.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.Bool("verbose", false, "Enable verbose logging")
	pf.String("log-format", "text", "Log format (text, json)")

	pf.Float64("center-lon", 0, "Initial view center longitude")
	pf.Float64("center-lat", 0, "Initial view center latitude")
	pf.Float64("zoom", 2, "Initial view zoom")
	pf.Int("width", 800, "Map width in pixels")
	pf.Int("height", 600, "Map height in pixels")
	pf.String("icon", "", "Marker icon URL (default: OpenLayers example icon)")
	pf.Float64("hit-tolerance", 0, "Extra pixels around markers and labels counted as hovering")

	pf.String("tiles-url", "", "XYZ tile URL template (default: OpenStreetMap)")
	pf.String("tiles-cache", "", "MBTiles file caching base tiles (disabled when empty)")
	pf.Bool("offline", false, "Serve base tiles only from --tiles-cache")
	pf.String("user-agent", "", "User-Agent sent to the tile and icon servers")
	pf.Duration("tiles-timeout", 0, "Timeout per tile request (default 15s)")

	bindFlags(pf, []flagBinding{
		{"verbose", "verbose"},
		{"log_format", "log-format"},
		{"map.center_lon", "center-lon"},
		{"map.center_lat", "center-lat"},
		{"map.zoom", "zoom"},
		{"map.width", "width"},
		{"map.height", "height"},
		{"map.icon", "icon"},
		{"map.hit_tolerance", "hit-tolerance"},
		{"tiles.url", "tiles-url"},
		{"tiles.cache", "tiles-cache"},
		{"tiles.offline", "offline"},
		{"tiles.user_agent", "user-agent"},
		{"tiles.timeout", "tiles-timeout"},
	})
}

func initConfig() {
	_ = godotenv.Load(".env")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("POINTMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func initLogging() {
	level := "info"
	if viper.GetBool("verbose") {
		level = "debug"
	}
	logger = logging.Setup(logging.Config{Level: level, Format: viper.GetString("log_format")})
}
