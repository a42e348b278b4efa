package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"cashflow/internal/config"
	server "cashflow/internal/http"
	applog "cashflow/internal/log"
	"cashflow/internal/services"
	"cashflow/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err.Error(), "db_path", cfg.DBPath)
		os.Exit(1)
	}

	ledger := services.NewLedger(repo)
	defer ledger.Close()

	srv := server.NewServer(":"+cfg.Port, ledger, ledger, ledger, repo, cfg.TopCategories)
	srv.ReadTimeout = cfg.ReadTimeout
	srv.WriteTimeout = cfg.WriteTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "port", cfg.Port, "db_path", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
