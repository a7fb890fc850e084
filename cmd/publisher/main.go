package main

import (
	"context"
	"os"

	"pressroom/internal/coordination"
	"pressroom/pkg/config"
)

const ServiceName = "publisher"

// One-shot publishing pass. Intended to run from cron or a CI
// schedule: it processes every due item once and exits, so overlapping
// runs only race on items already handled by the HTTP service.
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting publisher run")
	services := coordination.NewServices(cfg)
	defer func() {
		if err := services.Close(); err != nil {
			cfg.Log.Error("Failed to close services", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	results, err := services.Scheduler.ProcessDue(ctx)
	if err != nil {
		cfg.Log.Error("Publisher run failed", "error", err)
		os.Exit(1)
	}

	published, failed := 0, 0
	for _, r := range results {
		if r.Success {
			published++
			cfg.Log.Info("Published item", "id", r.ID, "title", r.Title)
		} else {
			failed++
			cfg.Log.Warn("Publish failed", "id", r.ID, "title", r.Title, "error", r.Error)
		}
	}
	cfg.Log.Info("Publisher run complete",
		"processed", len(results),
		"published", published,
		"failed", failed,
	)
}
