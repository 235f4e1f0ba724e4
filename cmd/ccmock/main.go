package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/ccpubsub/internal/api"
	"github.com/mcoot/ccpubsub/internal/factory"
	"github.com/mcoot/ccpubsub/internal/services/auth"
)

// config is read from the environment
type config struct {
	Host          string        `env:"CCMOCK_HOST"`
	Port          int           `env:"CCMOCK_PORT" envDefault:"8080"`
	SigningKey    string        `env:"CCMOCK_SIGNING_KEY" envDefault:"ccmock-development-key"`
	TokenDuration time.Duration `env:"CCMOCK_TOKEN_DURATION" envDefault:"24h"`
	EnableDebug   bool          `env:"CCMOCK_DEBUG" envDefault:"true"`
}

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mock := factory.NewMock(factory.MockConfig{
		Logger: logger,
		Auth: auth.Config{
			SigningKey:    cfg.SigningKey,
			TokenDuration: cfg.TokenDuration,
		},
		EnableDebug: cfg.EnableDebug,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(mock.Router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("mock service started",
		slog.String("addr", server.Addr()),
		slog.Bool("debug", cfg.EnableDebug))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		mock.Hub.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("mock service stopped")
}
