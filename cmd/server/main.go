package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/app"
	"github.com/driftwoodsurf/booking_server/internal/config"
	"github.com/driftwoodsurf/booking_server/internal/controller"
	"github.com/driftwoodsurf/booking_server/internal/repository/postgres"
	"github.com/driftwoodsurf/booking_server/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	blackouts := postgres.NewBlackoutRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool, blackouts)
	sessionRepo := postgres.NewSessionRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool, blackouts)
	expenseRepo := postgres.NewExpenseRepository(pool)

	bookingService := service.NewBookingService(requestRepo, sessionRepo, ledgerRepo, logger, cfg.FreeSlotOnCancel)
	expenseService := service.NewExpenseService(expenseRepo, logger)
	pricing := service.NewPricing(service.StaticCatalog())
	financeService := service.NewFinanceService(sessionRepo, requestRepo, expenseRepo, pricing, logger)

	janitor := app.NewJanitor(bookingService, cfg.SessionPurgeDays, logger)
	janitor.Start(ctx)
	defer janitor.Stop()

	router := controller.NewRouter(bookingService, expenseService, financeService, pricing, cfg.AllowedOrigins, logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("Starting booking server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
