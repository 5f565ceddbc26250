package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/liamwears/marquee/internal/config"
	"github.com/liamwears/marquee/internal/database"
	"github.com/liamwears/marquee/internal/handlers"
	"github.com/liamwears/marquee/internal/logging"
	"github.com/liamwears/marquee/internal/middleware"
	"github.com/liamwears/marquee/internal/services"
)

func main() {
	// Check for migrate command
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		direction := "up"
		if len(os.Args) > 2 {
			direction = os.Args[2]
		}
		runMigrations(direction)
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Dir:      cfg.Logging.Dir,
		FileName: "server.log",
	})
	defer logger.Close()
	logger.Info().Str("env", cfg.Server.Env).Msg("Starting Marquee server")

	// Initialize database connection
	db, err := database.New(database.Config{
		URL:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, logger.Logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := database.NewRedisClient(database.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       0,
		TLS:      cfg.Redis.TLS,
	}, logger.Logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize services
	catalogService := services.NewCatalogService(db.Pool)
	watchListService := services.NewWatchListService(db.Pool)
	omdbService := services.NewOMDBService(services.OMDBConfig{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
		Timeout: cfg.OMDB.Timeout,
	}, logger.Logger).WithCache(database.NewResponseCache(redisClient.Client, cfg.Server.DetailCacheTTL))

	// Initialize rate limiter (100 req/min in production, unlimited in local/dev)
	maxRequests := 1000
	if cfg.IsProduction() {
		maxRequests = 100
	}
	rateLimiter := middleware.NewRateLimiter(redisClient.Client, maxRequests, time.Minute, cfg.IsProduction(), logger.Logger)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger.Logger)
	enrichHandler := handlers.NewEnrichHandler(omdbService, catalogService, logger.Logger)
	watchListHandler := handlers.NewWatchListHandler(watchListService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthChecker{
		"database": db,
		"redis":    redisClient,
	})

	mux := http.NewServeMux()
	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, rateLimiter.Limit(h))
	}

	// Catalog routes
	api("GET /api/movies", catalogHandler.Movies)
	api("GET /api/series", catalogHandler.Series)
	api("GET /api/trending-movies", catalogHandler.Trending)
	api("GET /api/featured", catalogHandler.Featured)
	api("GET /api/genres", catalogHandler.Genres)
	api("GET /api/detail/{externalId}", catalogHandler.Detail)

	// Live provider routes
	api("GET /api/detail/{kind}/{externalId}", enrichHandler.Detail)
	api("GET /api/episodes/{externalId}/{season}", enrichHandler.Episodes)

	// My list routes
	api("GET /api/mylist/{userId}", watchListHandler.Get)
	api("POST /api/mylist/{userId}/{externalId}", watchListHandler.Add)
	api("DELETE /api/mylist/{userId}/{externalId}", watchListHandler.Remove)

	mux.HandleFunc("GET /health", healthHandler.Check)

	handler := middleware.Logger(logger.Logger)(middleware.CORS(cfg.Server.AllowedOrigins)(mux))

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvLog := logger.Component("server")
	serverErr := make(chan error, 1)
	go func() {
		srvLog.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		srvLog.Error().Err(err).Msg("Server failed")
	}

	srvLog.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		srvLog.Error().Err(err).Msg("Server forced to shutdown")
	}

	srvLog.Info().Msg("Server exited")
}

// runMigrations applies or rolls back database migrations
func runMigrations(direction string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := database.New(database.Config{
		URL:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, logger.Logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Pool, logger.Logger)

	ctx := context.Background()
	switch direction {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	default:
		err = fmt.Errorf("unknown migrate direction %q, want up or down", direction)
	}
	if err != nil {
		db.Close()
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	migrateLog := logger.Component("migrate")
	migrateLog.Info().Str("direction", direction).Msg("Migrations completed successfully")
}
