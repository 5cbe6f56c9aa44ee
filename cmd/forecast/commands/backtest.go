package commands

import (
	"fmt"
	"os"

	"besparks-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backtestCmd)
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Prints the weight-candidate backtest without writing any sheet.",
	Run: func(cmd *cobra.Command, args []string) {
		service := weightedService(loadConfig())
		results, best, err := service.BacktestReport(cmd.Context())
		if err != nil {
			serviceutil.Fatal("backtest failed", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"w1", "w3", "w6", "rmse", "selected"})
		for _, r := range results {
			selected := ""
			if r.Weights == best {
				selected = "*"
			}
			t.AppendRow(table.Row{
				r.Weights.W1,
				r.Weights.W3,
				r.Weights.W6,
				fmt.Sprintf("%.4f", r.RMSE),
				selected,
			})
		}
		t.Render()
	},
}
