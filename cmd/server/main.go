package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certbloom/certbloom/internal/api"
	"github.com/certbloom/certbloom/internal/config"
	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/jobs"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/mastery"
	"github.com/certbloom/certbloom/internal/metrics"
	"github.com/certbloom/certbloom/internal/mood"
	"github.com/certbloom/certbloom/internal/repository/postgres"
	"github.com/certbloom/certbloom/internal/repository/sqlstore"
	"github.com/certbloom/certbloom/internal/selection"
	"github.com/certbloom/certbloom/internal/services"
	"github.com/certbloom/certbloom/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("CertBloom Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("ranker=%s", cfg.Ranker)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("session_length default=%d max=%d", cfg.DefaultSessionLength, cfg.MaxSessionLength)
	log.Debug("mastery_worker_count=%d", cfg.MasteryWorkerCount)
	log.Debug("mastery_queue_size=%d", cfg.MasteryQueueSize)

	moods := mood.MustDefault()
	if cfg.MoodConfigPath != "" {
		table, err := mood.LoadTable(cfg.MoodConfigPath)
		if err == nil {
			moods, err = mood.NewModulator(table)
		}
		if err != nil {
			log.Error("failed to load mood table: %v", err)
			os.Exit(1)
		}
		log.Info("mood table loaded from %s", cfg.MoodConfigPath)
	}

	openCtx, openCancel := context.WithTimeout(context.Background(), 30*time.Second)
	database, err := db.Open(openCtx, db.Dialect(cfg.DBDriver), cfg.DatabaseURL)
	openCancel()
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	contentRepo := sqlstore.NewContentRepository(database)
	questionRepo := sqlstore.NewQuestionRepository(database)
	userRepo := sqlstore.NewUserRepository(database)
	sessionRepo := sqlstore.NewSessionRepository(database)
	progressRepo := sqlstore.NewProgressRepository(database)

	var ranker selection.Ranker = selection.NewPlannerRanker(
		services.NewCandidateStore(questionRepo, progressRepo),
		selection.DefaultPolicy(),
	)
	if cfg.Ranker == config.RankerProcedure {
		ranker = postgres.NewProcedureRanker(database.DB, selection.DefaultPolicy())
	}
	log.Info("using %s ranker", cfg.Ranker)

	progressService := services.NewProgressService(progressRepo, contentRepo, sessionRepo, userRepo, mastery.DefaultPolicy())

	masteryPool := worker.NewPool(cfg.MasteryWorkerCount, cfg.MasteryQueueSize)
	masteryPool.OnResult = func(name string, err error) {
		if err != nil {
			metrics.ObserveMasteryUpdate(metrics.MasteryDropped)
			return
		}
		metrics.ObserveMasteryUpdate(metrics.MasteryApplied)
	}
	jobQueue := jobs.NewWorkerQueue(masteryPool, progressService)

	srv := &api.Server{
		UserService:     services.NewUserService(userRepo),
		ContentService:  services.NewContentService(contentRepo),
		QuestionService: services.NewQuestionService(questionRepo, contentRepo),
		ImportService:   services.NewImportService(questionRepo, contentRepo),
		ProgressService: progressService,
		SessionService: services.NewSessionService(
			sessionRepo, questionRepo, contentRepo, userRepo, progressService,
			selection.NewSelector(ranker, questionRepo),
			moods,
			jobQueue,
			services.SessionLimits{Default: cfg.DefaultSessionLength, Max: cfg.MaxSessionLength},
		),
		Moods:          moods,
		DB:             database,
		ImportMaxBytes: int64(cfg.ImportMaxBytes),
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	masteryPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSeconds+5) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Drain deferred mastery updates before the database closes.
	log.Debug("stopping mastery pool")
	masteryPool.Stop()

	log.Info("===========================================")
	log.Info("CertBloom Server Stopped")
	log.Info("===========================================")
}
