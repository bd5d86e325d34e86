package main

import (
	"context"
	"log/slog"
	"os"

	"reviewscrape/cmd/reviewscrape/commands"
	"reviewscrape/lib/telemetry"
)

func main() {
	telemetry.InitSlog(os.Stdout, false)

	ctx := context.Background()
	t, err := telemetry.SetupFromEnv(ctx, "reviewscrape")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}

	code := commands.ExecuteContext(ctx)

	err = t.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	os.Exit(code)
}
