package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// runServer запускает HTTP сервер сайта и останавливает его при отмене ctx
func (a *App) runServer(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", a.Config.ServerPort),
		Handler:           a.handler.Routes(a.Config.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping http server")
	start := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("http server stopped", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
