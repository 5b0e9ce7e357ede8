package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examify/examify-backend/internal/cache"
	"github.com/examify/examify-backend/internal/certificate"
	"github.com/examify/examify-backend/internal/config"
	"github.com/examify/examify-backend/internal/database"
	"github.com/examify/examify-backend/internal/handler"
	"github.com/examify/examify-backend/internal/logger"
	"github.com/examify/examify-backend/internal/repository"
	"github.com/examify/examify-backend/internal/router"
	"github.com/examify/examify-backend/internal/service"
	"github.com/examify/examify-backend/internal/validator"
	"github.com/examify/examify-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("redact_answers", cfg.RedactAnswers).
		Msg("Starting Examify Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories & Stores ──────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	integrityRepo := repository.NewIntegrityRepository(pool)

	sessions := cache.NewSessionStore(rdb)
	examCache := cache.NewExamCache(rdb, cfg.ExamCacheTTL)
	monitor := cache.NewMonitor(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, sessions, log)
	examService := service.NewExamService(examRepo, resultRepo, examCache, monitor, cfg.RedactAnswers, log)
	resultService := service.NewResultService(resultRepo, certificate.NewPDFRenderer(), log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Exam:      handler.NewExamHandler(examService, log),
		Result:    handler.NewResultHandler(resultService, log),
		Integrity: handler.NewIntegrityHandler(examService, monitor, log, cfg.AllowedOrigins),
		Monitor:   handler.NewMonitorHandler(examService, monitor, log),
		Health:    database.NewHealth(pool, rdb),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	integrityWorker := worker.NewIntegrityWorker(
		worker.NewRedisQueue(rdb, config.WorkerKey.PersistIntegrityQueue),
		integrityRepo,
		log,
	)
	workerDone := make(chan struct{})
	go func() {
		integrityWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Integrity worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

