package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/EthanH9977/JourneyXPro/internal/pkg/config"
	"github.com/EthanH9977/JourneyXPro/internal/server"
	"github.com/EthanH9977/JourneyXPro/pkg/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel),
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("version", version),
	); err != nil {
		return err
	}
	appLogger := logger.Log
	defer func() { _ = appLogger.Sync() }()

	otelShutdown, err := server.InitObservability(cfg.Observability, version, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			appLogger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer srv.Close()

	srv.SetRouter(server.SetupRouter(srv.Registry(), server.RouterOptions{
		ServiceName: cfg.Observability.ServiceName,
		GinMode:     cfg.GinMode,
		PDFFontPath: cfg.PDFFontPath,
	}, appLogger))

	// Not exposed publicly.
	pprofServer := server.StartPprofServer(cfg.Observability.PprofAddr, appLogger)
	httpServer := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return server.GracefulShutdown(gctx, appLogger, httpServer, pprofServer)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server error", zap.Error(err))
		return err
	}
	appLogger.Info("Graceful shutdown complete")
	return nil
}
