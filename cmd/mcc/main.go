// Package main implements the Motion Control Container entry point.
// Architecture: IEEE 42010 + arc42 structure per docs/motion_control_container_architecture_v1.md
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/motion-control/mcc/internal/api"
	"github.com/motion-control/mcc/internal/audit"
	"github.com/motion-control/mcc/internal/auth"
	"github.com/motion-control/mcc/internal/command"
	"github.com/motion-control/mcc/internal/config"
	"github.com/motion-control/mcc/internal/gateway"
	"github.com/motion-control/mcc/internal/kinematics"
	"github.com/motion-control/mcc/internal/telemetry"
)

const Version = "1.0.0"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("container failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	logger.Info("starting Motion Control Container", zap.String("version", Version))

	// Configuration. Source: Architecture §6.1 Initialization
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for _, name := range cfg.MovedParams {
		logger.Warn("deprecated parameter name in configuration", zap.String("name", name))
	}

	// Limit store seeded from configuration.
	store := kinematics.NewStore()
	store.Initialize(cfg.Limits)
	logger.Info("limit store initialized", zap.Uint64("revision", store.Revision()))

	// Audit logger.
	auditLogger, err := audit.NewLogger(cfg.AuditDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logger.Warn("error closing audit logger", zap.Error(err))
		}
	}()

	// Telemetry hub; the ready event carries the current limits.
	hub := telemetry.NewHub(cfg.Timing, func() map[string]interface{} {
		limits, revision := store.View()
		return map[string]interface{}{
			"limits":   limits,
			"revision": revision,
		}
	})
	defer hub.Stop()

	// Orchestrator.
	orchestrator := command.NewOrchestrator(store, hub, auditLogger)

	// Reconfiguration gateway follows the config file while running.
	var gw *gateway.Gateway
	if _, err := os.Stat(cfg.ConfigPath); err == nil {
		transport := gateway.NewFileTransport(cfg.ConfigPath, logger)
		gw = gateway.New(transport, store, cfg.Timing.DebounceWindow, logger)
		gw.OnApplied(func(applied []string) {
			_ = hub.Publish(telemetry.Event{
				Type: "limitsChanged",
				Data: map[string]interface{}{
					"params":   applied,
					"revision": store.Revision(),
					"source":   "file",
				},
			})
		})
	} else {
		logger.Info("limits file absent, file reconfiguration disabled",
			zap.String("path", cfg.ConfigPath))
	}

	// API server, with auth when configured.
	server, err := buildServer(cfg, hub, orchestrator, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", zap.String("addr", cfg.Addr))
		return server.Start(cfg.Addr)
	})

	if gw != nil {
		g.Go(func() error {
			return gw.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if gw != nil {
			if err := gw.Stop(); err != nil {
				logger.Warn("error stopping gateway", zap.Error(err))
			}
		}
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Motion Control Container shutdown complete")
	return nil
}

// buildServer constructs the API server, attaching the JWT verifier when the
// environment configures one.
func buildServer(cfg *config.Config, hub *telemetry.Hub, orchestrator *command.Orchestrator, logger *zap.Logger) (*api.Server, error) {
	timing := cfg.Timing

	if cfg.Auth.Algorithm == "" {
		logger.Warn("auth disabled, API is unauthenticated")
		return api.NewServer(hub, orchestrator,
			timing.HTTPReadTimeout, timing.HTTPWriteTimeout, timing.HTTPIdleTimeout), nil
	}

	verifierConfig := auth.VerifierConfig{
		Algorithm: cfg.Auth.Algorithm,
		SecretKey: cfg.Auth.SecretKey,
	}
	if cfg.Auth.PublicKeyFile != "" {
		pemData, err := os.ReadFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		verifierConfig.PublicKeyPEM = string(pemData)
	}

	verifier, err := auth.NewVerifier(verifierConfig)
	if err != nil {
		return nil, err
	}

	logger.Info("auth enabled", zap.String("algorithm", cfg.Auth.Algorithm))
	return api.NewServerWithAuth(hub, orchestrator, auth.NewMiddlewareWithVerifier(verifier),
		timing.HTTPReadTimeout, timing.HTTPWriteTimeout, timing.HTTPIdleTimeout), nil
}
