package commands

import (
	"besparks-backend/lib/besparks"
	"besparks-backend/lib/configutil"
	"besparks-backend/lib/notify"
	"besparks-backend/lib/serviceutil"
	"besparks-backend/lib/sheets"
	"besparks-backend/services/poya"
)

type Config struct {
	Portal          poya.ClientOptions `json:"portal"`
	Api             besparks.Config    `json:"api"`
	SlackWebhookUrl string             `json:"slack_webhook_url"`
	WorkbookPath    string             `json:"workbook_path"`
	Options         poya.Options       `json:"options"`
	// default start date for backfill mode, YYYY-MM-DD
	BackfillStart string `json:"backfill_start"`
	// cron schedule for daemon mode, defaults to 08:00 daily
	Schedule string `json:"schedule"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.WorkbookPath == "" {
		cfg.WorkbookPath = "poya_sales.xlsx"
	}
	return cfg
}

func buildService(cfg Config) poya.Service {
	portal, err := poya.NewClient(cfg.Portal)
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}
	return poya.NewService(
		portal,
		besparks.NewClient(cfg.Api),
		sheets.NewWorkbook(cfg.WorkbookPath),
		notify.NewNotifier(cfg.SlackWebhookUrl),
		cfg.Options,
	)
}
