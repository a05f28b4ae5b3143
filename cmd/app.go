package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskflow/config"
	"taskflow/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultShutdownTimeout = 10 * time.Second

// App is a built service ready to serve.
type App struct {
	config *config.Config
	server *http.Server
	db     *gorm.DB
}

// Run serves HTTP until ctx is done or the listener fails, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", a.server.Addr),
			zap.String("health", "/api/health"))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeResources()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	return a.Shutdown()
}

// Shutdown stops accepting requests, waits for in-flight ones up to
// server.shutdown_timeout, then releases the database and flushes logs.
func (a *App) Shutdown() error {
	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
		errs = append(errs, err)
	}
	logger.Info("Server stopped")

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	var errs []error
	if err := closeDB(a.db); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
		errs = append(errs, err)
	}
	if err := logger.Sync(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Handler exposes the router for in-process tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
