// Command dispatch-svc serves order-to-channel assignment over HTTP: a
// single POST /optimize endpoint backed by a 0/1 integer program, plus
// /health, /ready, and /metrics for operations.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"dispatch-svc/pkg/apperror"
	"dispatch-svc/pkg/audit"
	"dispatch-svc/pkg/cache"
	"dispatch-svc/pkg/config"
	"dispatch-svc/pkg/httpserver"
	"dispatch-svc/pkg/logger"
	"dispatch-svc/pkg/metrics"
	"dispatch-svc/pkg/ratelimit"
	"dispatch-svc/pkg/telemetry"
	"dispatch-svc/services/dispatch-svc/internal/service"
)

func main() {
	cfg, err := config.LoadWithServiceDefaults("dispatch-svc", 8080)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	if cfg.Metrics.Enabled {
		metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}

	var dispatchCache *cache.DispatchCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("failed to create cache, continuing without it", "error", err)
		} else {
			dispatchCache = cache.NewDispatchCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("dispatch cache initialized", "driver", cfg.Cache.Driver, "ttl", cfg.Cache.DefaultTTL)
		}
	}

	var auditLogger audit.Logger
	if cfg.Audit.Enabled {
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
		}
	}

	var rateLimiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
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

	svc := service.New(cfg.App.Version, service.ServiceConfigFromAppConfig(cfg), dispatchCache, auditLogger)
	handler := service.NewHandler(svc, cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(httpserver.CORS(cfg.HTTP.CORS))
	router.Use(httpserver.RequestLogger(metrics.Get()))
	router.Use(httpserver.Gzip())
	router.Use(chimiddleware.Recoverer)
	if cfg.Tracing.Enabled {
		router.Use(telemetry.Middleware)
	}
	router.Use(httpserver.RateLimit(rateLimiter, nil, metrics.Get()))

	handler.Routes(router)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpserver.WriteJSONError(w, apperror.New(apperror.CodeNotFound, "no such route"))
	})

	srv := httpserver.New(cfg, router, &httpserver.Options{RateLimiter: rateLimiter, AuditLogger: auditLogger})

	logger.Log.Info("starting dispatch-svc",
		"addr", cfg.HTTP.Host,
		"port", cfg.HTTP.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"cache_enabled", dispatchCache != nil,
	)

	runErr := srv.Run()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("dispatch service shutdown did not complete cleanly", "error", err)
	}

	if runErr != nil {
		logger.Log.Error("server failed", "error", runErr)
		panic(runErr)
	}
}
