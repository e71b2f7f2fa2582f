package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/account-service/internal/bootstrap"
	"github.com/baechuer/account-service/internal/logger"
)

const (
	exitOK      = 0
	exitStartup = 1
	exitCrash   = 2

	shutdownTimeout = 15 * time.Second
	schemaTimeout   = 30 * time.Second
)

// httpServer is the part of *http.Server that Run needs.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

// serverBuilder builds the server and returns a cleanup function.
type serverBuilder func() (httpServer, func(), error)

// Run serves until a signal arrives or the listener fails, then drains the
// server before releasing its dependencies.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return exitStartup
	}
	// after shutdown: in-flight requests may still hand mail to the dispatcher
	defer cleanup()

	crashed := serve(srv, lg)

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-crashed:
		lg.Error().Err(err).Msg("server crashed")
		return exitCrash
	}

	shutdown(srv, lg)
	return exitOK
}

// serve starts the listener; the channel only ever carries a real failure.
func serve(srv httpServer, lg zerolog.Logger) <-chan error {
	crashed := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			crashed <- err
		}
	}()
	return crashed
}

func shutdown(srv httpServer, lg zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("graceful shutdown failed; closing")
		_ = srv.Close()
		return
	}
	lg.Info().Msg("shutdown complete")
}

// runInitSchema backs the -init-schema flag.
func runInitSchema(apply func(context.Context) error, lg zerolog.Logger) int {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	if err := apply(ctx); err != nil {
		lg.Error().Err(err).Msg("init schema failed")
		return exitStartup
	}
	return exitOK
}

func buildFromBootstrap() (httpServer, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, nil, err
	}
	return realServer{srv}, cleanup, nil
}

func main() {
	initSchema := flag.Bool("init-schema", false, "create the users table if missing, then exit")
	flag.Parse()

	logger.Init()

	if *initSchema {
		os.Exit(runInitSchema(bootstrap.InitSchema, logger.Logger))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(buildFromBootstrap, sigCh, logger.Logger))
}
