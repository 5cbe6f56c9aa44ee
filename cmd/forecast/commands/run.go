package commands

import (
	"besparks-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(weightedCmd)
	rootCmd.AddCommand(boostedCmd)
}

var weightedCmd = &cobra.Command{
	Use:   "weighted",
	Short: "Runs the weighted moving-average forecast and writes the output sheets.",
	Run: func(cmd *cobra.Command, args []string) {
		service := weightedService(loadConfig())
		if err := service.RunAndNotify(cmd.Context()); err != nil {
			serviceutil.Fatal("forecast run failed", err)
		}
	},
}

var boostedCmd = &cobra.Command{
	Use:   "boosted",
	Short: "Runs the gradient-boosted forecast and writes the output sheets.",
	Run: func(cmd *cobra.Command, args []string) {
		service := boostedService(loadConfig())
		if err := service.RunAndNotify(cmd.Context()); err != nil {
			serviceutil.Fatal("boosted forecast run failed", err)
		}
	},
}
