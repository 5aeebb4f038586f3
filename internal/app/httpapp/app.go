package httpapp

import (
	"context"
	"errors"
	"filegate/internal/config"
	admingate "filegate/internal/http/admin"
	"filegate/internal/http/gate"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       int
}

// New creates new HTTP server app
func New(
	log *slog.Logger,
	gateServer *gate.Server,
	adminServer *admingate.Server,
	conf config.HTTPConfig,
) *App {
	mux := http.NewServeMux()
	gateServer.Register(mux)
	adminServer.Register(mux)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", conf.Port),
		Handler:      mux,
		ReadTimeout:  conf.Timeout,
		WriteTimeout: conf.Timeout,
		IdleTimeout:  conf.IdleTimeout,
	}

	return &App{
		log:        log,
		httpServer: httpServer,
		port:       conf.Port,
	}
}

// MustRun runs HTTP server and panic if any occurs
func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run HTTP server
func (a *App) Run() error {
	const op = "httpapp.Run"

	log := a.log.With(slog.String("op", op),
		slog.Int("port", a.port),
	)

	log.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop HTTP server gracefully, waiting for in-flight requests.
func (a *App) Stop() {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).Info("stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
}
