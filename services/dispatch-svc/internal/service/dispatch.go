// Package service implements the HTTP-facing DispatchService: request
// validation, response memoization, and the engine.Solve call, wrapped
// with the same lifecycle tracking (in-flight accounting, graceful
// shutdown, audit logging, tracing) the teacher's gRPC SolverService uses.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dispatch-svc/pkg/apperror"
	"dispatch-svc/pkg/audit"
	"dispatch-svc/pkg/cache"
	"dispatch-svc/pkg/config"
	"dispatch-svc/pkg/logger"
	"dispatch-svc/pkg/metrics"
	"dispatch-svc/pkg/telemetry"
	"dispatch-svc/services/dispatch-svc/internal/engine"
	"dispatch-svc/services/dispatch-svc/internal/validate"
)

// ServiceConfig holds the runtime limits for the DispatchService.
type ServiceConfig struct {
	// MaxConcurrentSolves bounds the number of simultaneous engine.Solve
	// calls; callers beyond this limit wait on the semaphore.
	MaxConcurrentSolves int

	// DefaultTimeoutSeconds is applied when a request omits timeout_seconds.
	DefaultTimeoutSeconds float64

	// MaxTimeoutSeconds caps the timeout a caller may request.
	MaxTimeoutSeconds float64

	// DefaultWeights is applied when a request omits weights entirely.
	DefaultWeights engine.Weights

	// ShutdownTimeout bounds how long Shutdown waits for in-flight solves.
	ShutdownTimeout time.Duration
}

// ServiceConfigFromAppConfig builds a ServiceConfig from the loaded
// application configuration.
func ServiceConfigFromAppConfig(cfg *config.Config) *ServiceConfig {
	workers := cfg.HTTP.Workers
	if workers <= 0 {
		workers = 8
	}
	return &ServiceConfig{
		MaxConcurrentSolves:   workers,
		DefaultTimeoutSeconds: cfg.Optimize.DefaultTimeoutSeconds,
		MaxTimeoutSeconds:     cfg.Optimize.MaxTimeoutSeconds,
		DefaultWeights: engine.Weights{
			DeliveryTime: cfg.Optimize.DefaultWeights.DeliveryTime,
			Cost:         cfg.Optimize.DefaultWeights.Cost,
			Quality:      cfg.Optimize.DefaultWeights.Quality,
		},
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}
}

type serviceStats struct {
	requestsTotal   atomic.Int64
	requestsActive  atomic.Int64
	requestsSuccess atomic.Int64
	requestsFailed  atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
}

// Stats is a point-in-time snapshot of DispatchService activity.
type Stats struct {
	RequestsTotal   int64
	RequestsActive  int64
	RequestsSuccess int64
	RequestsFailed  int64
	CacheHits       int64
	CacheMisses     int64
}

// DispatchService validates and solves order-to-channel assignment
// requests over HTTP. It is safe for concurrent use.
type DispatchService struct {
	version string
	config  *ServiceConfig
	metrics *metrics.Metrics
	cache   *cache.DispatchCache
	audit   audit.Logger

	sem chan struct{}

	stats serviceStats

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// New creates a DispatchService. cache and auditLogger may be nil to
// disable those features.
func New(version string, cfg *ServiceConfig, dispatchCache *cache.DispatchCache, auditLogger audit.Logger) *DispatchService {
	if cfg == nil {
		cfg = &ServiceConfig{MaxConcurrentSolves: 8, DefaultTimeoutSeconds: 5, MaxTimeoutSeconds: 60}
	}
	concurrency := cfg.MaxConcurrentSolves
	if concurrency <= 0 {
		concurrency = 8
	}
	return &DispatchService{
		version:    version,
		config:     cfg,
		metrics:    metrics.Get(),
		cache:      dispatchCache,
		audit:      auditLogger,
		sem:        make(chan struct{}, concurrency),
		shutdownCh: make(chan struct{}),
	}
}

// Solve validates req, resolves a cache hit if one exists, and otherwise
// runs the assignment engine, caching a successful result for future
// identical requests.
func (s *DispatchService) Solve(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	if err := s.trackRequest(); err != nil {
		return nil, err
	}
	defer s.untrackRequest()

	ctx, span := telemetry.StartSpan(ctx, "DispatchService.Solve")
	defer span.End()

	if req != nil {
		span.SetAttributes(telemetry.RequestAttributes(len(req.Orders), len(req.Channels), req.TimeoutSeconds)...)
		if s.metrics != nil {
			s.metrics.RecordRequestSize(len(req.Orders), len(req.Channels))
		}
	}

	if req != nil {
		s.applyDefaults(req)
	}

	if ve := validate.Request(req); !ve.IsValid() {
		s.stats.requestsFailed.Add(1)
		err := apperror.New(apperror.CodeInvalidArgument, ve.ErrorMessages()[0]).WithDetails("errors", ve.ErrorMessages())
		telemetry.SetError(ctx, err)
		return nil, err
	}

	if resp, found := s.checkCache(ctx, req, span); found {
		s.stats.requestsSuccess.Add(1)
		return resp, nil
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		s.stats.requestsFailed.Add(1)
		return nil, apperror.New(apperror.CodeTimeout, "timed out waiting for a solver slot")
	}

	resp := engine.Solve(req)

	s.stats.requestsSuccess.Add(1)
	if s.metrics != nil {
		s.metrics.RecordSolve(string(resp.Status), time.Duration(resp.SolveTimeMs)*time.Millisecond, resp.Status == engine.StatusFallback)
	}
	span.SetAttributes(telemetry.SolveAttributes(string(resp.Status), resp.SolveTimeMs, resp.TotalScore)...)

	s.cacheResultAsync(req, resp)
	s.logAudit(ctx, resp)

	return resp, nil
}

func (s *DispatchService) trackRequest() error {
	select {
	case <-s.shutdownCh:
		return apperror.New(apperror.CodeUnimplemented, "service is shutting down")
	default:
	}
	s.wg.Add(1)
	s.stats.requestsTotal.Add(1)
	s.stats.requestsActive.Add(1)
	return nil
}

func (s *DispatchService) untrackRequest() {
	s.stats.requestsActive.Add(-1)
	s.wg.Done()
}

func (s *DispatchService) applyDefaults(req *engine.Request) {
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = s.config.DefaultTimeoutSeconds
	}
	if req.TimeoutSeconds > s.config.MaxTimeoutSeconds && s.config.MaxTimeoutSeconds > 0 {
		req.TimeoutSeconds = s.config.MaxTimeoutSeconds
	}
	if req.Weights.DeliveryTime == 0 && req.Weights.Cost == 0 && req.Weights.Quality == 0 {
		req.Weights = s.config.DefaultWeights
	}
}

func (s *DispatchService) checkCache(ctx context.Context, req *engine.Request, span trace.Span) (*engine.Response, bool) {
	if s.cache == nil {
		return nil, false
	}

	resp, found, err := s.cache.Get(ctx, req)
	if err != nil || !found {
		s.stats.cacheMisses.Add(1)
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
		span.SetAttributes(attribute.Bool("cache_hit", false))
		return nil, false
	}

	s.stats.cacheHits.Add(1)
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
	span.SetAttributes(attribute.Bool("cache_hit", true))
	telemetry.AddEvent(ctx, "cache_hit", attribute.Float64("total_score", resp.TotalScore))

	return resp, true
}

func (s *DispatchService) cacheResultAsync(req *engine.Request, resp *engine.Response) {
	if s.cache == nil {
		return
	}
	select {
	case <-s.shutdownCh:
		return
	default:
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		select {
		case <-s.shutdownCh:
			return
		default:
		}
		if err := s.cache.Set(ctx, req, resp, 0); err != nil {
			logger.Log.Warn("failed to cache solve result", "error", err)
		}
	}()
}

func (s *DispatchService) logAudit(ctx context.Context, resp *engine.Response) {
	if s.audit == nil {
		return
	}
	entry := audit.NewEntry().
		Service("dispatch-svc").
		Method("/optimize").
		Action(audit.ActionSolve).
		Outcome(audit.OutcomeSuccess).
		Duration(time.Duration(resp.SolveTimeMs) * time.Millisecond).
		Meta("status", string(resp.Status)).
		Meta("assignments", len(resp.Assignments)).
		Build()
	if err := s.audit.Log(ctx, entry); err != nil {
		logger.Log.Warn("failed to log audit entry", "error", err)
	}
}

// GetStats returns a snapshot of service activity counters.
func (s *DispatchService) GetStats() Stats {
	return Stats{
		RequestsTotal:   s.stats.requestsTotal.Load(),
		RequestsActive:  s.stats.requestsActive.Load(),
		RequestsSuccess: s.stats.requestsSuccess.Load(),
		RequestsFailed:  s.stats.requestsFailed.Load(),
		CacheHits:       s.stats.cacheHits.Load(),
		CacheMisses:     s.stats.cacheMisses.Load(),
	}
}

// IsHealthy reports whether the service is still accepting requests.
func (s *DispatchService) IsHealthy() bool {
	select {
	case <-s.shutdownCh:
		return false
	default:
		return true
	}
}

// Shutdown stops accepting new requests and waits for in-flight solves
// (including async cache writes) to finish, up to ctx's deadline.
func (s *DispatchService) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			logger.Log.Info("all requests completed gracefully")
		case <-ctx.Done():
			err = ctx.Err()
			logger.Log.Warn("shutdown timeout, some requests may be interrupted",
				"active_requests", s.stats.requestsActive.Load(),
			)
		}
	})
	return err
}
