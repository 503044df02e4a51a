package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/civic-lens/civic-backend/pkg/civic"
)

func main() {
	slog.Info("Starting media cleanup job", slog.Bool("dryRun", conf.CleanUpConfig.DryRun))
	start := time.Now()

	defer func() {
		if err := civicDBService.Close(); err != nil {
			slog.Error("Error closing DB connection", slog.String("error", err.Error()))
		}
	}()

	result, err := civic.SweepOrphanedMedia(
		context.Background(),
		blobStore,
		civicDBService,
		start.Add(-gracePeriod),
		conf.CleanUpConfig.DryRun,
	)
	if err != nil {
		slog.Error("Media cleanup aborted", slog.String("error", err.Error()))
		return
	}

	slog.Info("Media cleanup job completed",
		slog.Int("checked", result.Checked),
		slog.Int("skipped", result.Skipped),
		slog.Int("removed", result.Removed),
		slog.Int("failed", result.Failed),
		slog.String("duration", time.Since(start).String()),
	)
}
