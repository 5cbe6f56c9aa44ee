package commands

import (
	"log/slog"
	"sort"
	"time"

	"besparks-backend/lib/restyutil"
	"besparks-backend/lib/timezone"
	"besparks-backend/services/poya"

	"github.com/spf13/cobra"
)

var (
	scrapeMode  *string
	scrapeStart *string
)

func init() {
	scrapeMode = scrapeCmd.Flags().String("mode", "daily", "Scrape mode: daily (yesterday only) or backfill.")
	scrapeStart = scrapeCmd.Flags().String("start", "", "Backfill start date (YYYY-MM-DD), overrides the config.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--mode daily|backfill] [--start YYYY-MM-DD]",
	Short: "Scrapes the portal's daily sales and pushes them downstream.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		poya.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/poya"))
		service := buildService(cfg)

		backfillStart := cfg.BackfillStart
		if *scrapeStart != "" {
			backfillStart = *scrapeStart
		}
		start, end := poya.DateRange(poya.Mode(*scrapeMode), backfillStart, timezone.Now())

		t1 := time.Now()
		results := service.Run(cmd.Context(), start, end)
		t2 := time.Now()

		days := make([]string, 0, len(results))
		for day := range results {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			slog.Info("day result", "date", day, "status", results[day])
		}
		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())
	},
}
