package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/liamwears/marquee/internal/config"
	"github.com/liamwears/marquee/internal/database"
	"github.com/liamwears/marquee/internal/importer"
	"github.com/liamwears/marquee/internal/logging"
	"github.com/liamwears/marquee/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logger := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Dir:      cfg.Logging.Dir,
		FileName: "importer.log",
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The job is sequential, one connection is enough
	db, err := database.New(database.Config{
		URL:            cfg.Database.URL,
		MaxConns:       1,
		MinConns:       1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, logger.Logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer db.Close()

	titles, err := importer.LoadTitles(cfg.Import.TitlesFile)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load import titles")
		return 1
	}

	omdb := services.NewOMDBService(services.OMDBConfig{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
		Timeout: cfg.OMDB.Timeout,
	}, logger.Logger)
	catalog := services.NewCatalogService(db.Pool)

	runLog := logger.Component("importer")
	runLog.Info().Int("titles", len(titles)).Dur("delay", cfg.Import.Delay).Msg("Starting data import")

	job := importer.NewJob(omdb, catalog, cfg.Import.Delay, logger.Logger)
	summary, err := job.Run(ctx, titles)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			runLog.Warn().Int("processed", summary.Total()).Msg("Import interrupted")
		} else {
			runLog.Error().Err(err).Msg("Import failed")
		}
		return 1
	}

	return 0
}
