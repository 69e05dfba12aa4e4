// Command sweep runs one goal deadline sweep and exits. It is meant for cron
// deployments that set GOAL_SWEEP_ENABLED=false on the API servers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/quitbridge-backend/internal/app"
	"github.com/yungbote/quitbridge-backend/internal/platform/shutdown"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.Services.GoalSweeper.RunOnce(ctx)
	if err != nil {
		a.Log.Error("goal sweep failed", "due", res.Due, "notified", res.Notified, "failed", res.Failed, "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("goal sweep done", "day", res.Day, "due", res.Due, "notified", res.Notified)
}
