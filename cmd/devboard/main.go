// Package main is the DevBoard server: the board REST API and the WebSocket
// gateway over one configured data source.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/handlers"
	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/httpmw"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/common/tracing"
	gateways "github.com/apper-canvas/holodevboard/internal/gateway/websocket"
)

const serverName = "devboard"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "devboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize logger
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	log.Info("Starting DevBoard...", zap.String("driver", cfg.Source.Driver))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if enabled, err := tracing.Setup(ctx, tracing.FromEnv(serverName)); err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
	} else if enabled {
		log.Info("OTLP tracing enabled")
	}

	// 3. Event bus, data source and services
	app, err := provideApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	// 4. WebSocket gateway
	gateway := gateways.NewGateway(cfg.CORS.AllowedOrigins, log)
	go gateway.Hub.Run(ctx)
	broadcaster := gateways.RegisterBoardNotifications(ctx, app.bus, gateway.Hub, log)
	defer broadcaster.Close()

	// 5. HTTP router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestID())
	router.Use(httpmw.OtelTracing(serverName))
	router.Use(httpmw.RequestLogger(log, serverName))

	gateway.SetupRoutes(router)
	handlers.RegisterRoutes(router, gateway.Router, app.services, app.sessions, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler(cfg.CORS.AllowedOrigins).Handler(router),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracing shutdown failed", zap.Error(err))
	}
	log.Info("DevBoard stopped")
	return nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}
