package main

import (
	"context"
	"io"
	"os"

	"spotify-records/config"
	"spotify-records/scraper/wikipedia"
	"spotify-records/services"
	"spotify-records/storage"
	"spotify-records/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerTo(os.Stderr, utils.ParseLevel(cfg.LogLevel))

	if err := run(context.Background(), cfg, logger, os.Stdout); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// run executes one scrape. Progress lines and insights go to stdout; everything
// else goes through logger.
func run(ctx context.Context, cfg *config.Config, logger *utils.Logger, stdout io.Writer) error {
	logger.Debug("Config — url: %s | class: %s | mode: %s | db: %s | table: %s",
		cfg.SourceURL, cfg.TableClass, cfg.FetchMode, cfg.DBPath, cfg.TableName)

	fetcher, err := wikipedia.NewFetcher(cfg, logger)
	if err != nil {
		return err
	}

	sinks := []storage.Opener{
		func() (storage.RecordWriter, error) {
			return storage.OpenSQLite(cfg.DBPath, cfg.TableName)
		},
	}
	if cfg.PostgresEnabled() {
		sinks = append(sinks, func() (storage.RecordWriter, error) {
			return storage.NewPostgresWriter(cfg.DSN(), cfg.TableName)
		})
	}

	pipeline := &services.Pipeline{
		Fetcher:  fetcher,
		Cleaner:  services.NewCleaner(logger),
		Sinks:    sinks,
		Done:     services.DoneLine(cfg.DBPath, cfg.TableName),
		Progress: stdout,
		Logger:   logger,
	}
	if cfg.RawCSVPath != "" {
		pipeline.Snapshot = func() (storage.TableWriter, error) {
			logger.Info("Raw table snapshot → %s", cfg.RawCSVPath)
			return storage.NewCSVWriter(cfg.RawCSVPath)
		}
	}

	if _, err := pipeline.Run(ctx, cfg.SourceURL, cfg.TableClass); err != nil {
		return err
	}

	if cfg.PrintInsights {
		return printInsights(cfg, logger, stdout)
	}
	return nil
}

func printInsights(cfg *config.Config, logger *utils.Logger, stdout io.Writer) error {
	store, err := storage.OpenSQLite(cfg.DBPath, cfg.TableName)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.FetchAll()
	if err != nil {
		return err
	}

	insights := services.NewInsightService(logger)
	insights.Print(stdout, insights.Generate(records))
	return nil
}
