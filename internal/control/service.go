// Package control assembles and runs the application.
package control

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vietddude/apiwatch/internal/core/config"
	"github.com/vietddude/apiwatch/internal/infra/gateway"
	"github.com/vietddude/apiwatch/internal/infra/probe"
	redisclient "github.com/vietddude/apiwatch/internal/infra/redis"
	"github.com/vietddude/apiwatch/internal/monitor"
	"github.com/vietddude/apiwatch/internal/monitor/backoff"
)

// Service wires the prober, tracker, runner, gateway and status server
// together and manages their lifecycle.
type Service struct {
	cfg          *config.AppConfig
	prober       probe.Prober
	tracker      *monitor.Tracker
	runner       *monitor.Runner
	statusServer *monitor.Server
	gateway      *gateway.Client
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewService creates a Service with all dependencies initialized.
func NewService(cfg *config.AppConfig) (*Service, error) {
	// 1. Initialize the prober for the configured target
	var prober probe.Prober
	switch cfg.Target.Scheme {
	case "http", "":
		prober = probe.NewHTTPProber(cfg.Target.URL, cfg.Target.HealthPath, cfg.Target.ProbeTimeout)
	case "grpc":
		p, err := probe.NewGRPCProber(context.Background(), cfg.Target.URL, cfg.Target.GRPCService, cfg.Target.ProbeTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to init grpc prober: %w", err)
		}
		prober = p
	default:
		return nil, fmt.Errorf("unknown target scheme: %s", cfg.Target.Scheme)
	}

	// 2. Initialize the health tracker
	tracker := monitor.NewTracker(prober, backoff.NewTimer(), monitor.Config{
		FailureThreshold: cfg.Monitor.FailureThreshold,
		Backoff: backoff.Policy{
			Base: cfg.Monitor.BackoffBase,
			Max:  cfg.Monitor.BackoffMax,
		},
	})

	// 3. Initialize the periodic runner
	runner := monitor.NewRunner(tracker, cfg.Monitor.Interval)

	// 4. Initialize the response cache
	var cache gateway.Cache
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, using in-memory cache", "error", err)
			cache = gateway.NewMemoryCache()
		} else {
			cache = redisClient
			slog.Info("Using Redis response cache")
		}
	} else {
		cache = gateway.NewMemoryCache()
		slog.Info("Using in-memory response cache")
	}

	// 5. Initialize the prediction gateway
	gw := gateway.NewClient(cfg.Gateway, cache, tracker)

	// 6. Initialize the status server
	statusServer := monitor.NewServer(tracker, cfg.Server.Port)

	return &Service{
		cfg:          cfg,
		prober:       prober,
		tracker:      tracker,
		runner:       runner,
		statusServer: statusServer,
		gateway:      gw,
		redisClient:  redisClient,
		log:          slog.Default(),
	}, nil
}

// Start starts the status server and the periodic health checks.
func (s *Service) Start(ctx context.Context) error {
	go func() {
		if err := s.statusServer.Start(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Status server failed", "error", err)
		}
	}()

	s.runner.Start(ctx)
	return nil
}

// Stop stops all components.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping apiwatch...")

	s.runner.Stop()
	s.gateway.Close()

	if c, ok := s.prober.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("Failed to close prober", "error", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}

	return s.statusServer.Stop(ctx)
}

// Tracker exposes the health tracker, mainly for tests.
func (s *Service) Tracker() *monitor.Tracker {
	return s.tracker
}

// Gateway exposes the prediction gateway.
func (s *Service) Gateway() *gateway.Client {
	return s.gateway
}
