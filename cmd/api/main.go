package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdacosta/banco-ledger/internal/config"
	"github.com/pdacosta/banco-ledger/internal/events"
	"github.com/pdacosta/banco-ledger/internal/events/kafka"
	"github.com/pdacosta/banco-ledger/internal/handler"
	"github.com/pdacosta/banco-ledger/internal/ledger"
	"github.com/pdacosta/banco-ledger/internal/logging"
	"github.com/pdacosta/banco-ledger/internal/middleware"
	"github.com/pdacosta/banco-ledger/internal/repository"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("banco-ledger", cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	db, err := connectDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
		slog.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	customers := repository.NewCustomerRepository(db)
	svc := ledger.NewService(
		repository.NewAccountRepository(db),
		repository.NewEntryRepository(db),
		repository.NewLoanRepository(db),
		customers,
		publisher,
		db,
	)

	mux := buildRouter(cfg, db, customers, svc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.RequestID(middleware.Recovery(middleware.Logging(mux))),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildRouter(cfg *config.Config, db *sql.DB, customers *repository.CustomerRepository, svc *ledger.Service) *http.ServeMux {
	jwtExpiry := time.Duration(cfg.JWTExpiryMin) * time.Minute

	authHandler := handler.NewAuthHandler(customers, cfg.JWTSecret, jwtExpiry)
	accountHandler := handler.NewAccountHandler(svc)
	txHandler := handler.NewTransactionHandler(svc)
	loanHandler := handler.NewLoanHandler(svc)
	adminHandler := handler.NewAdminHandler(svc)
	healthHandler := handler.NewHealthHandler(db)

	authed := middleware.Auth(cfg.JWTSecret)
	admin := func(h http.Handler) http.Handler {
		return authed(middleware.RequireAdmin(cfg.AdminEmail)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Check)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/accounts", authed(http.HandlerFunc(accountHandler.Open)))
	mux.Handle("GET /api/v1/accounts", authed(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /api/v1/accounts/{id}/statement", authed(http.HandlerFunc(accountHandler.Statement)))
	mux.Handle("GET /api/v1/accounts/{id}/loans", authed(http.HandlerFunc(loanHandler.ListForAccount)))
	mux.Handle("POST /api/v1/accounts/{id}/deposits", authed(http.HandlerFunc(txHandler.Deposit)))
	mux.Handle("POST /api/v1/accounts/{id}/withdrawals", authed(http.HandlerFunc(txHandler.Withdraw)))
	mux.Handle("POST /api/v1/transfers", authed(http.HandlerFunc(txHandler.Transfer)))
	mux.Handle("POST /api/v1/loans", authed(http.HandlerFunc(loanHandler.Request)))

	mux.Handle("POST /api/v1/admin/interest-runs", admin(http.HandlerFunc(adminHandler.RunInterest)))
	mux.Handle("GET /api/v1/admin/customers", admin(http.HandlerFunc(adminHandler.ListCustomers)))
	mux.Handle("GET /api/v1/admin/accounts", admin(http.HandlerFunc(adminHandler.ListAccounts)))

	return mux
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var lastErr error
	for i := range 30 {
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}
