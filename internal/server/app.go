// Package server initializes and runs the reference nutrition API server.
// It wires logging, the in-memory store and the gRPC endpoint, and stops
// gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/nutrisync/internal/logging"
	"github.com/dmitrijs2005/nutrisync/internal/server/config"
	"github.com/dmitrijs2005/nutrisync/internal/server/store"

	gs "github.com/dmitrijs2005/nutrisync/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	data      *store.Data
	server    *gs.GRPCServer
}

func NewApp(c *config.Config) *App {
	logger, closer := logging.New(logging.Options{Level: c.LogLevel, JSON: c.LogJSON, File: c.LogFile})
	slog.SetDefault(logger.Slog())
	data := store.NewData()

	return &App{
		config:    c,
		logger:    logger,
		logCloser: closer,
		data:      data,
		server:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, data),
	}
}

// Server exposes the gRPC server, e.g. for fault injection.
func (app *App) Server() *gs.GRPCServer {
	return app.server
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.logCloser.Close()

	app.logger.Info(ctx, "Starting app...", "address", app.config.EndpointAddrGRPC)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
