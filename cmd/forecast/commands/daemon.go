package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"besparks-backend/lib/serviceutil"
	"besparks-backend/lib/telemetry"
	"besparks-backend/lib/timezone"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var daemonStrategy *string

func init() {
	daemonStrategy = daemonCmd.Flags().String("strategy", "weighted", "Forecast strategy to run on schedule: weighted or boosted.")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon [--strategy weighted|boosted]",
	Short: "Runs the forecast on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InstrumentPerfStats(cmd.Context())

		cfg := loadConfig()
		schedule := cfg.Schedule
		if schedule == "" {
			// 06:00 on the first of every month
			schedule = "0 6 1 * *"
		}

		var run func(ctx context.Context) error
		switch *daemonStrategy {
		case "weighted":
			service := weightedService(cfg)
			run = service.RunAndNotify
		case "boosted":
			service := boostedService(cfg)
			run = service.RunAndNotify
		default:
			slog.Error("unknown strategy", "strategy", *daemonStrategy)
			os.Exit(1)
		}

		c := cron.New(cron.WithLocation(timezone.Location))
		_, err := c.AddFunc(schedule, func() {
			if err := run(context.Background()); err != nil {
				slog.Error("scheduled forecast run failed", "err", err)
			}
		})
		if err != nil {
			serviceutil.Fatal("invalid cron schedule", err)
		}

		slog.Info("forecast daemon started", "schedule", schedule, "strategy", *daemonStrategy)
		c.Start()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		// let an in-flight run finish before exiting
		<-c.Stop().Done()
	},
}
