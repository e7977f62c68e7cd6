package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"turnboard/internal/api"
	"turnboard/internal/catalog"
	"turnboard/internal/config"
	"turnboard/internal/database"
	"turnboard/internal/export"
	"turnboard/internal/metrics"
	"turnboard/internal/notify"
	"turnboard/internal/service"
	"turnboard/internal/sheets"
	"turnboard/internal/store"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	configPath := os.Getenv("TURNBOARD_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	st, err := store.New(cfg.Data.DaysDir, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init day store error")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		st.UseRedisCache(rdb, cfg.CacheTTL())
	}

	cat := catalog.New(db)
	templates := config.NewTemplateSource(cfg.Checklists)
	svc := service.New(st, cat, templates, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hot-reload checklist templates on config changes.
	if err := config.WatchChecklists(ctx, configPath, 30*time.Second, templates.Set); err != nil {
		logger.Warn().Err(err).Msg("checklist watcher not started")
	}

	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != 0 {
		tn, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, logger)
		if err != nil {
			logger.Error().Err(err).Msg("telegram notifier init failed")
		} else {
			svc.AddNotifier(tn)
		}
	}

	if cfg.Sheets.CredentialsFile != "" && cfg.Sheets.SpreadsheetID != "" {
		sh, err := sheets.NewSheetsService(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, logger)
		if err != nil {
			logger.Error().Err(err).Msg("sheets service init failed")
		} else {
			svc.AddNotifier(sh)
		}
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(
			cfg.Database.Path, cfg.Data.DaysDir, cfg.Backup.Path,
			cfg.BackupInterval(), cfg.Backup.RetentionDays, logger)
		go backup.Start(ctx)
	}

	srv := api.NewHTTPServer(svc, export.NewSummaryExporter(), logger, api.Options{
		APIKey:         cfg.Server.APIKey,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	logger.Info().Msg("turnboard started")
	if err := srv.Start(ctx, cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
