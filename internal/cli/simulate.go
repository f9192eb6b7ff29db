package cli

import (
	"time"

	"github.com/spf13/cobra"

	"campuswatch/internal/app"
)

var (
	simulateSteps    int
	simulateInterval time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the synthetic producer offline and print raised alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Simulate(cmd.Context(), app.SimulateOptions{
			Steps:    simulateSteps,
			Interval: simulateInterval,
		})
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateSteps, "steps", 120, "Number of simulation steps")
	simulateCmd.Flags().DurationVar(&simulateInterval, "interval", 0, "Synthetic interval between steps (default: scheduler.interval)")
}
