package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API on addr until ctx is canceled, then shuts the
// server down gracefully and tears down all tracked executions.
func (a *App) Serve(ctx context.Context, addr string) error {
	router := a.newServer().Router(a.promReg)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🌐 HTTP server listening.", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.sessions.Close(shutdownCtx); err != nil {
		a.logger.Warn("Session teardown reported an error.", "error", err)
	}
	return <-errCh
}
