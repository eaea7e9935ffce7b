package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/app"
	"github.com/Freeeeeet/availability_calendar/internal/config"
	"github.com/Freeeeeet/availability_calendar/internal/controller/httpapi"
	"github.com/Freeeeeet/availability_calendar/internal/repository"
	"github.com/Freeeeeet/availability_calendar/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting availability calendar",
		"environment", cfg.Environment,
		"http_addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Sugar().Fatalw("Failed to create connection pool", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Sugar().Fatalw("Failed to ping database", "error", err)
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Sugar().Fatalw("Failed to create migrator", "error", err)
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Sugar().Fatalw("Failed to apply migrations", "error", err)
	}
	migrator.Close()

	slotRepo := repository.NewSlotRepository(pool)
	exceptionRepo := repository.NewExceptionRepository(pool, logger)

	scheduleService := service.NewScheduleService(slotRepo, exceptionRepo, logger)

	scheduler := app.NewScheduler(scheduleService, cfg.ExceptionRetentionWk, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	handler := httpapi.NewSlotHandler(scheduleService, logger)
	router := httpapi.NewRouter(handler, pool, logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalw("HTTP server failed", "error", err)
		}
	}()

	logger.Sugar().Infow("HTTP server started", "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorw("Graceful shutdown failed", "error", err)
	}
}
