// Package server wires configuration, storage, the AI gateway, services and
// handlers into one HTTP server, and owns their shutdown.
//
// Every dependency is built in New; handlers only see services and services
// only see repository interfaces. Start blocks until SIGINT/SIGTERM and then
// drains in-flight requests before closing resources.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/YadavAkhileshh/CrackBano/internal/ai"
	"github.com/YadavAkhileshh/CrackBano/internal/auth"
	"github.com/YadavAkhileshh/CrackBano/internal/cache"
	"github.com/YadavAkhileshh/CrackBano/internal/cleanup"
	"github.com/YadavAkhileshh/CrackBano/internal/config"
	"github.com/YadavAkhileshh/CrackBano/internal/metrics"
	"github.com/YadavAkhileshh/CrackBano/internal/middleware"
	sqliteRepo "github.com/YadavAkhileshh/CrackBano/internal/repository/sqlite"
	"github.com/YadavAkhileshh/CrackBano/internal/upload"
)

const (
	readTimeout     = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// writeTimeout has to outlast a full provider chain: two provider calls at
// PROVIDER_TIMEOUT each plus local fallback.
func writeTimeout(cfg *config.Config) time.Duration {
	d := 2*cfg.ProviderTimeout + 30*time.Second
	if d < 90*time.Second {
		d = 90 * time.Second
	}
	return d
}

// Server is the running application.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	router *chi.Mux

	db       *sqliteRepo.DB
	sessions cache.Sessions
	redis    *cache.Redis
	gemini   *ai.Gemini
	gateway  *ai.Gateway
	limiter  *middleware.RateLimiter
	sweep    *cleanup.OrphanSweep
	images   *upload.ImageStore
	tokens   *auth.TokenService
	registry *prometheus.Registry
	metrics  *metrics.Collector

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
	closeOnce   sync.Once
}

// New builds every dependency. On error whatever was already opened is
// closed again.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = metrics.NewCollector(s.registry)

	if err := s.open(); err != nil {
		s.Close()
		return nil, err
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) open() error {
	var err error

	s.db, err = sqliteRepo.New(s.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("server: opening database: %w", err)
	}

	s.tokens, err = auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	s.sessions = cache.Nop{}
	if s.cfg.RedisURL != "" {
		r, err := cache.NewRedis(s.cfg.RedisURL, s.cfg.SessionCacheTTL)
		if err != nil {
			s.logger.Warn("session cache disabled", slog.String("error", err.Error()))
		} else {
			s.redis = r
			s.sessions = r
			s.logger.Info("session cache enabled", slog.Duration("ttl", s.cfg.SessionCacheTTL))
		}
	}

	var providers []ai.Provider
	if s.cfg.GeminiAPIKey != "" {
		g, err := ai.NewGemini(context.Background(), s.cfg.GeminiAPIKey, s.cfg.GeminiModel)
		if err != nil {
			s.logger.Warn("gemini provider disabled", slog.String("error", err.Error()))
		} else {
			s.gemini = g
			providers = append(providers, g)
		}
	}
	if s.cfg.GroqAPIKey != "" {
		providers = append(providers, ai.NewGroq(
			&http.Client{Timeout: s.cfg.ProviderTimeout + 5*time.Second},
			s.cfg.GroqAPIKey, s.cfg.GroqModel, s.cfg.GroqEndpoint,
		))
	}
	s.gateway = ai.NewGateway(s.logger, s.metrics, s.cfg.ProviderTimeout, providers...)
	if len(providers) == 0 {
		s.logger.Warn("no AI provider configured, serving local question bank only")
	} else {
		s.logger.Info("AI providers configured", slog.Any("providers", s.gateway.Providers()))
	}

	limiterCfg := middleware.DefaultRateLimiterConfig()
	if s.cfg.AIRateLimit > 0 {
		limiterCfg.PerMinute = s.cfg.AIRateLimit
		limiterCfg.Burst = s.cfg.AIRateLimit
	}
	s.limiter = middleware.NewRateLimiter(limiterCfg, s.logger)

	s.sweep = cleanup.NewOrphanSweep(s.db, s.logger, s.metrics)

	if s.cfg.UploadDir != "" {
		s.images, err = upload.NewImageStore(s.cfg.UploadDir, s.cfg.UploadMaxBytes)
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	return nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartSweeper runs the orphan sweep in the background until Close. A
// non-positive ORPHAN_SWEEP_INTERVAL disables it.
func (s *Server) StartSweeper() {
	if s.cfg.OrphanSweepInterval <= 0 || s.sweepCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.sweepCancel = cancel
	s.sweepDone = make(chan struct{})
	go func() {
		defer close(s.sweepDone)
		s.sweep.Start(ctx, s.cfg.OrphanSweepInterval)
	}()
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully and
// closes every resource.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout(s.cfg),
		IdleTimeout:  idleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	s.StartSweeper()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("environment", s.cfg.Environment),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close stops the sweeper and the rate limiter, then closes the Gemini
// client, Redis and the database, in that order. It is safe to call more
// than once.
func (s *Server) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if s.sweepCancel != nil {
			s.sweepCancel()
			<-s.sweepDone
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
		if s.gemini != nil {
			if err := s.gemini.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing gemini: %w", err))
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing redis: %w", err))
			}
		}
		if s.db != nil {
			if err := s.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing database: %w", err))
			}
		}
	})
	return errors.Join(errs...)
}
