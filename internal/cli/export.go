package cli

import (
	"time"

	"github.com/spf13/cobra"

	"campuswatch/internal/app"
)

var (
	exportBuilding string
	exportSteps    int
	exportInterval time.Duration
	exportCSV      string
	exportPNG      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Simulate a building's energy series and export it as CSV/PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Export(cmd.Context(), app.ExportOptions{
			Building: exportBuilding,
			Steps:    exportSteps,
			Interval: exportInterval,
			CSVPath:  exportCSV,
			PNGPath:  exportPNG,
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportBuilding, "building", "EnggBlock", "Building id to export")
	exportCmd.Flags().IntVar(&exportSteps, "steps", 288, "Number of simulation steps")
	exportCmd.Flags().DurationVar(&exportInterval, "interval", 0, "Synthetic interval between steps (default: scheduler.interval)")
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "Write the series to this CSV file")
	exportCmd.Flags().StringVar(&exportPNG, "png", "", "Render the series to this PNG file")
}
