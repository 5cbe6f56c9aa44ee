package main

import (
	"context"

	"besparks-backend/cmd/poyaspider/commands"
	"besparks-backend/lib/serviceutil"
	"besparks-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()

	t, err := telemetry.SetupFromEnv(ctx, "poyaspider")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(true)

	commands.ExecuteContext(ctx)
}
