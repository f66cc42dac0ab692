package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nba_props/pipeline/internal/cache"
	"nba_props/pipeline/internal/client"
	"nba_props/pipeline/internal/config"
	"nba_props/pipeline/internal/features"
	"nba_props/pipeline/internal/ingest"
	"nba_props/pipeline/internal/metrics"
	"nba_props/pipeline/internal/repository"
	"nba_props/pipeline/internal/scenario"
	"nba_props/pipeline/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NBA props data pipeline worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	nbaClient := client.NewClient(client.Options{
		BaseURL:   cfg.NBAStatsBaseURL,
		Timeout:   cfg.NBAStatsTimeout,
		JitterMin: cfg.FetchJitterMin,
		JitterMax: cfg.FetchJitterMax,
	})
	log.Info().Msg("NBA Stats client initialized")

	dbConfig := repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	redisCache, err := cache.NewRedisCache(ctx, cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
	}

	scenarioSvc := scenario.NewService(cfg.ScenarioSpread)
	if redisCache != nil {
		scenarioSvc.WithCache(redisCache, cfg.CacheTTLScenario)
	}
	scenarioHandler := scenario.NewHandler(
		scenarioSvc,
		db.Stats,
		features.NewEngine(cfg.GarbageTimeMinutes, cfg.DefaultDaysRest),
	)

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, scenarioHandler)
	}

	// System uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	orchestrator := ingest.New(nbaClient, db.IngestStore(), cfg.MaxRetries, cfg.RetryCooldown)
	if redisCache != nil {
		orchestrator.WithScheduleCache(redisCache, cfg.CacheTTLSchedule)
	}

	sched := scheduler.NewScheduler(cfg, orchestrator, db)
	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the ops HTTP server: Prometheus metrics, health
// check and the scenario evaluation endpoint
func startMetricsServer(port int, scenarioHandler http.Handler) {
	http.Handle("/metrics", promhttp.Handler())
	http.Handle("/scenario", scenarioHandler)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
