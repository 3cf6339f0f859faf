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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodflow/internal/app"
	"foodflow/internal/config"
	"foodflow/internal/database"
	"foodflow/internal/logger"
	"foodflow/internal/mealdb"
	"foodflow/internal/metrics"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/storage"
	"foodflow/internal/telegram"
	"foodflow/internal/userstate"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := cfg.RequireTelegram(); err != nil {
		log.WithError(err).Fatal("telegram is not configured")
	}
	if len(cfg.TelegramAllowedUserIDs) == 0 {
		log.Warn("TELEGRAM_ALLOWED_USER_IDS is empty, every message will be ignored")
	}

	ctx := context.Background()

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	kv, err := storage.Open(ctx, cfg, db.SQL)
	if err != nil {
		log.WithError(err).WithField("backend", cfg.StorageBackend).Fatal("failed to open storage")
	}
	defer kv.Close()

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsStore := metrics.NewStore(db.SQL)
	recorder := metrics.Multi{metricsStore, metrics.NewCollectors(reg)}

	// 4. Services
	catalog := recipe.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		log.WithError(err).Warn("recipe catalog has coverage gaps")
	}
	source := mealdb.NewClient(cfg.MealDBBaseURL, cfg.FetchTimeout, log)

	application := app.NewApp(app.Deps{
		Store:     userstate.New(ctx, kv, log),
		Generator: planner.NewGenerator(catalog),
		Source:    source,
		Fetcher:   planner.NewFetchGenerator(source, cfg.FetchConcurrency, log),
		Recorder:  recorder,
		Log:       log,
	})

	// 5. Telegram Bot
	bot, err := telegram.NewBot(cfg, application, metricsStore, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize telegram bot")
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("telegram bot server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if err := bot.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("telegram updates still running at exit")
	}

	log.Info("server exiting")
}
