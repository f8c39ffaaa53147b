package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/config"
	"github.com/vitorf997/packing-creator/internal/infra"
	"github.com/vitorf997/packing-creator/internal/repository"
	"github.com/vitorf997/packing-creator/internal/router"
	"github.com/vitorf997/packing-creator/internal/service"
	"github.com/vitorf997/packing-creator/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
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
	if rdb == nil {
		log.Warn().Msg("REDIS_URL empty: sessions, caches and jobs are kept in memory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := cache.NewStore(rdb)
	if ms, ok := store.(*cache.MemoryStore); ok {
		go ms.Sweep(ctx, time.Minute)
	}

	seeded, err := service.NewLabelTemplateService(
		repository.NewLabelTemplateRepository(db),
		repository.NewClientRepository(db),
		nil,
	).AsegurarBase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed label templates")
	}
	if seeded > 0 {
		log.Info().Int("created", seeded).Msg("built-in label templates seeded")
	}

	// Async label renders and mail. Processors are registered before the
	// pool starts: email here, labels inside router.New.
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	dispatcher := worker.NewDispatcher(worker.NewQueue(rdb), cfg.LabelJobAttempts)
	dispatcher.Register(worker.JobTypeEmail, worker.NewEmailWorker(mailer, smtpCB))

	r := router.New(router.Deps{
		Cfg:        cfg,
		DB:         db,
		RDB:        rdb,
		Store:      store,
		Dispatcher: dispatcher,
		Mailer:     mailer,
		SMTP:       smtpCB,
	})

	dispatcher.StartWorkerPool(ctx, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, dispatcher, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("packing creator listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
