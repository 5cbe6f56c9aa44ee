package commands

import (
	"besparks-backend/lib/besparks"
	"besparks-backend/lib/configutil"
	"besparks-backend/lib/notify"
	"besparks-backend/lib/serviceutil"
	"besparks-backend/lib/sheets"
	"besparks-backend/services/forecast"
	"besparks-backend/services/forecast/boosted"
)

type Config struct {
	Api             besparks.Config     `json:"api"`
	SlackWebhookUrl string              `json:"slack_webhook_url"`
	WorkbookPath    string              `json:"workbook_path"`
	Sheets          forecast.SheetNames `json:"sheets"`
	BoostedSheets   boosted.SheetNames  `json:"boosted_sheets"`
	// cron schedule for daemon mode, defaults to 06:00 on the 1st
	Schedule string `json:"schedule"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.WorkbookPath == "" {
		cfg.WorkbookPath = "forecast.xlsx"
	}
	return cfg
}

func weightedService(cfg Config) forecast.Service {
	return forecast.NewService(
		besparks.NewClient(cfg.Api),
		sheets.NewWorkbook(cfg.WorkbookPath),
		notify.NewNotifier(cfg.SlackWebhookUrl),
		cfg.Sheets,
	)
}

func boostedService(cfg Config) boosted.Service {
	return boosted.NewService(
		besparks.NewClient(cfg.Api),
		sheets.NewWorkbook(cfg.WorkbookPath),
		notify.NewNotifier(cfg.SlackWebhookUrl),
		cfg.BoostedSheets,
	)
}
