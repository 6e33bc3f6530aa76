package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/pointmap/internal/dataset"
	"github.com/MeKo-Tech/pointmap/internal/geojson"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Print the point dataset as GeoJSON",
	RunE:  runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().Bool("placement", true, "Include the computed label placement of each point")

	bindFlags(featuresCmd.Flags(), []flagBinding{
		{"features.placement", "placement"},
	})
}

func runFeatures(cmd *cobra.Command, args []string) error {
	features, err := dataset.Reference()
	if err != nil {
		return err
	}

	data, err := geojson.ToGeoJSONBytes(features, viper.GetBool("features.placement"))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
