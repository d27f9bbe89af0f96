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

	"github.com/bfrpaulondev/fitness-api/internal/config"
	"github.com/bfrpaulondev/fitness-api/internal/infra"
	"github.com/bfrpaulondev/fitness-api/internal/router"
	"github.com/bfrpaulondev/fitness-api/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty console in development, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Budget alerts: queue consumers, SMTP behind a breaker, DLQ replay.
	// Wired here (composition root) so the pool owns its infrastructure.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	if !cfg.SMTPEnabled() {
		log.Warn().Msg("SMTP_HOST not set: budget alerts will be queued but not delivered")
	}
	mailer := infra.NewMailer(cfg)

	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.WorkerHandlers{
		BudgetAlert: worker.NewBudgetAlertWorker(mailer, smtpCB, cfg.AlertDefaultRecipient),
	})
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		RDB:   rdb,
		CB:    smtpCB,
		Queue: worker.QueueBudgetAlert,
	})

	r := router.New(ctx, cfg, db, rdb, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("env", cfg.Env).Msgf("fitness-api listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
