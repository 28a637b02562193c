// Package httpserver wires the JSON HTTP transport for dispatch-svc: router
// construction, graceful shutdown, and the rate limiter / audit logger /
// telemetry provider lifecycle that used to live on the teacher's gRPC
// server wrapper.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch-svc/pkg/audit"
	"dispatch-svc/pkg/config"
	"dispatch-svc/pkg/logger"
	"dispatch-svc/pkg/metrics"
	"dispatch-svc/pkg/ratelimit"
	"dispatch-svc/pkg/telemetry"
)

// Server wraps a net/http.Server with the ambient lifecycle dispatch-svc
// needs: an optional rate limiter, an optional audit logger, and an
// optional telemetry provider, all started together and drained together.
type Server struct {
	httpServer  *http.Server
	config      *config.Config
	telemetry   *telemetry.Provider
	rateLimiter ratelimit.Limiter
	auditLogger audit.Logger
}

// Options carries dependencies a caller may already have constructed
// (e.g. in tests), overriding what New would otherwise build from cfg.
type Options struct {
	RateLimiter ratelimit.Limiter
	AuditLogger audit.Logger
}

// New constructs a Server bound to handler, building a rate limiter and
// audit logger from cfg when enabled and none were supplied.
func New(cfg *config.Config, handler http.Handler, opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}

	rateLimiter := opts.RateLimiter
	if rateLimiter == nil && cfg.RateLimit.Enabled {
		var err error
		rateLimiter, err = ratelimit.New(&ratelimit.Config{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window,
			Strategy:        cfg.RateLimit.Strategy,
			Backend:         cfg.RateLimit.Backend,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
			RedisAddr:       cfg.RateLimit.RedisAddr,
		})
		if err != nil {
			logger.Log.Warn("failed to create rate limiter, continuing without it", "error", err)
			rateLimiter = nil
		} else {
			logger.Log.Info("rate limiter initialized",
				"requests", cfg.RateLimit.Requests,
				"window", cfg.RateLimit.Window,
				"strategy", cfg.RateLimit.Strategy,
			)
		}
	}

	auditLogger := opts.AuditLogger
	if auditLogger == nil && cfg.Audit.Enabled {
		var err error
		auditLogger, err = audit.New(&audit.Config{
			Enabled:     cfg.Audit.Enabled,
			Backend:     cfg.Audit.Backend,
			FilePath:    cfg.Audit.FilePath,
			BufferSize:  cfg.Audit.BufferSize,
			FlushPeriod: cfg.Audit.FlushPeriod,
		})
		if err != nil {
			logger.Log.Warn("failed to create audit logger, continuing without it", "error", err)
			auditLogger = nil
		} else {
			audit.SetGlobal(auditLogger)
			logger.Log.Info("audit logger initialized", "backend", cfg.Audit.Backend)
		}
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Server{
		httpServer:  httpServer,
		config:      cfg,
		rateLimiter: rateLimiter,
		auditLogger: auditLogger,
	}
}

// RateLimiter returns the rate limiter the server started, or nil.
func (s *Server) RateLimiter() ratelimit.Limiter { return s.rateLimiter }

// AuditLogger returns the audit logger the server started, or nil.
func (s *Server) AuditLogger() audit.Logger { return s.auditLogger }

// Run initializes telemetry, starts the HTTP listener, and blocks until a
// shutdown signal or listener error. It returns a non-nil error only for a
// listener failure; a clean shutdown returns nil.
func (s *Server) Run() error {
	ctx := context.Background()

	if s.config.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     s.config.Tracing.Enabled,
			Endpoint:    s.config.Tracing.Endpoint,
			ServiceName: s.config.Tracing.ServiceName,
			Version:     s.config.App.Version,
			Environment: s.config.App.Environment,
			SampleRate:  s.config.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("failed to init telemetry", "error", err)
		} else {
			s.telemetry = tp
			logger.Log.Info("telemetry initialized",
				"endpoint", s.config.Tracing.Endpoint,
				"sample_rate", s.config.Tracing.SampleRate,
			)
		}
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Log.Info("starting http server",
			"service", s.config.App.Name,
			"addr", s.httpServer.Addr,
			"environment", s.config.App.Environment,
			"version", s.config.App.Version,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if m := metrics.Get(); m != nil {
		m.SetServiceInfo(s.config.App.Version, s.config.App.Environment)
	}

	if s.auditLogger != nil {
		entry := audit.NewEntry().
			Service(s.config.App.Name).
			Method("server.Start").
			Action(audit.ActionCreate).
			Outcome(audit.OutcomeSuccess).
			Meta("addr", s.httpServer.Addr).
			Meta("version", s.config.App.Version).
			Meta("environment", s.config.App.Environment).
			Build()
		if err := s.auditLogger.Log(ctx, entry); err != nil {
			logger.Log.Warn("failed to log audit entry", "error", err)
		}
	}

	return s.waitForShutdown(errCh)
}

func (s *Server) waitForShutdown(errCh chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Log.Info("received shutdown signal", "signal", sig)
	}

	if s.auditLogger != nil {
		entry := audit.NewEntry().
			Service(s.config.App.Name).
			Method("server.Shutdown").
			Action(audit.ActionUpdate).
			Outcome(audit.OutcomeSuccess).
			Meta("reason", "signal").
			Build()
		if err := s.auditLogger.Log(context.Background(), entry); err != nil {
			logger.Log.Warn("failed to log audit entry", "error", err)
		}
	}

	shutdownTimeout := s.config.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			logger.Log.Warn("failed to shutdown telemetry", "error", err)
		}
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Close(); err != nil {
			logger.Log.Warn("failed to close rate limiter", "error", err)
		}
	}

	if s.auditLogger != nil {
		if err := s.auditLogger.Close(); err != nil {
			logger.Log.Warn("failed to close audit logger", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Log.Warn("forcing server close", "error", err)
		return s.httpServer.Close()
	}

	logger.Log.Info("server stopped gracefully")
	return nil
}

// Stop closes the listener immediately, without draining in-flight requests.
func (s *Server) Stop() error {
	return s.httpServer.Close()
}
