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
	"besparks-backend/services/poya"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Scrapes yesterday's sales on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InstrumentPerfStats(cmd.Context())

		cfg := loadConfig()
		service := buildService(cfg)

		schedule := cfg.Schedule
		if schedule == "" {
			// 08:00 every morning, after the portal settles yesterday's data
			schedule = "0 8 * * *"
		}

		c := cron.New(cron.WithLocation(timezone.Location))
		_, err := c.AddFunc(schedule, func() {
			start, end := poya.DateRange(poya.ModeDaily, "", timezone.Now())
			service.Run(context.Background(), start, end)
		})
		if err != nil {
			serviceutil.Fatal("invalid cron schedule", err)
		}

		slog.Info("spider daemon started", "schedule", schedule)
		c.Start()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		// let an in-flight run finish before exiting
		<-c.Stop().Done()
	},
}
