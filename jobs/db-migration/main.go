package main

import (
	"context"
	"log/slog"
	"time"
)

func main() {
	if civicDBService == nil {
		return
	}
	defer func() {
		if err := civicDBService.Close(); err != nil {
			slog.Error("Error closing DB connection", slog.String("error", err.Error()))
		}
	}()

	dropIndexes()

	createIndexes()

	getIndexes()

	migrationTasks()
}

func dropIndexes() {
	switch conf.TaskConfigs.DropIndexes {
	case DropIndexesModeAll:
		slog.Info("Dropping all indexes")
		civicDBService.DropIndexes(true)
	case DropIndexesModeDefaults:
		slog.Info("Dropping default indexes")
		civicDBService.DropIndexes(false)
	}
}

func createIndexes() {
	if !conf.TaskConfigs.CreateIndexes {
		return
	}
	if err := civicDBService.CreateDefaultIndexes(); err != nil {
		slog.Error("Error creating default indexes", slog.String("error", err.Error()))
		return
	}
	slog.Info("Default indexes created")
}

func getIndexes() {
	if !conf.TaskConfigs.GetIndexes {
		return
	}
	indexes, err := civicDBService.ListIndexes()
	if err != nil {
		slog.Error("Error listing indexes", slog.String("error", err.Error()))
		return
	}
	for collection, specs := range indexes {
		for _, index := range specs {
			slog.Info("Index", slog.String("collection", collection), slog.Any("name", index["name"]), slog.Any("key", index["key"]))
		}
	}
}

func migrationTasks() {
	if conf.TaskConfigs.MigrationTasks.NormalizeReportArrays {
		start := time.Now()
		slog.Info("Normalizing report media and upvoters arrays")
		modified, err := civicDBService.NormalizeReportArrays(context.Background())
		if err != nil {
			slog.Error("Error normalizing report arrays", slog.String("error", err.Error()))
		}
		slog.Info("Report arrays normalized", slog.Int64("modified", modified), slog.String("duration", time.Since(start).String()))
	}
}
