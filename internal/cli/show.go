package cli

import (
	"github.com/spf13/cobra"

	"campuswatch/internal/app"
)

var (
	showURL   string
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent alerts from a running instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), app.ShowOptions{
			BaseURL: showURL,
			Limit:   showLimit,
		})
	},
}

func init() {
	showCmd.Flags().StringVar(&showURL, "url", "http://localhost:3000", "Base URL of the running instance")
	showCmd.Flags().IntVar(&showLimit, "limit", 50, "Maximum number of alerts to print")
}
