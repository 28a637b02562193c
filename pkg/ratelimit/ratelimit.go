package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrLimiterClosed     = errors.New("limiter is closed")
)

// Limiter bounds the request rate for a key.
type Limiter interface {
	// Allow reports whether a single request for key is permitted.
	Allow(ctx context.Context, key string) (bool, error)

	// AllowN reports whether n requests for key are permitted.
	AllowN(ctx context.Context, key string, n int) (bool, error)

	// Wait blocks until a request for key is permitted or ctx is done.
	Wait(ctx context.Context, key string) error

	// Reset clears the limit state for key.
	Reset(ctx context.Context, key string) error

	// GetInfo returns the current limit state for key.
	GetInfo(ctx context.Context, key string) (*LimitInfo, error)

	// Close releases any resources held by the limiter.
	Close() error
}

// LimitInfo describes the current state of a key's limit.
type LimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Config configures a Limiter.
type Config struct {
	// Requests is the number of requests permitted per Window.
	Requests int `koanf:"requests"`

	// Window is the time window the limit applies to.
	Window time.Duration `koanf:"window"`

	// Strategy selects the MemoryLimiter algorithm: token_bucket or
	// sliding_window. Any other value uses the sliding window; RedisLimiter
	// always uses a sliding window.
	Strategy string `koanf:"strategy"`

	// KeyFunc names a key extractor (ip, user, method). No limiter or
	// middleware in this module reads it; the HTTP middleware keys by client IP.
	KeyFunc string `koanf:"key_func"`

	// Backend selects the storage: memory, redis.
	Backend string `koanf:"backend"`

	// BurstSize is the token bucket burst allowance.
	BurstSize int `koanf:"burst_size"`

	// CleanupInterval is how often the in-memory backend evicts stale keys.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Requests:        100,
		Window:          time.Minute,
		Strategy:        "sliding_window",
		KeyFunc:         "ip",
		Backend:         "memory",
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// New creates a Limiter for the backend named in cfg.
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case "redis":
		return NewRedisLimiter(cfg)
	case "memory", "":
		return NewMemoryLimiter(cfg), nil
	default:
		return NewMemoryLimiter(cfg), nil
	}
}

// KeyExtractor derives a bucket key from a call's context, method, and metadata.
type KeyExtractor func(ctx context.Context, method string, metadata map[string]string) string

// DefaultKeyExtractor buckets by client IP.
func DefaultKeyExtractor(_ context.Context, _ string, metadata map[string]string) string {
	if ip, ok := metadata["x-forwarded-for"]; ok && ip != "" {
		return ip
	}
	if ip, ok := metadata["x-real-ip"]; ok && ip != "" {
		return ip
	}
	if peer, ok := metadata[":authority"]; ok {
		return peer
	}
	return "unknown"
}

// MethodKeyExtractor buckets by method name.
func MethodKeyExtractor(_ context.Context, method string, _ map[string]string) string {
	return method
}

// UserKeyExtractor buckets by user id, falling back to IP when absent.
func UserKeyExtractor(ctx context.Context, method string, metadata map[string]string) string {
	if userID, ok := metadata["x-user-id"]; ok && userID != "" {
		return userID
	}
	return DefaultKeyExtractor(ctx, method, metadata)
}

// CompositeKeyExtractor concatenates the keys produced by extractors.
func CompositeKeyExtractor(extractors ...KeyExtractor) KeyExtractor {
	return func(ctx context.Context, method string, metadata map[string]string) string {
		var key string
		for _, ext := range extractors {
			key += ext(ctx, method, metadata) + ":"
		}
		return key
	}
}

// RateLimitedMethods holds a per-method limit configuration with a fallback default.
type RateLimitedMethods struct {
	mu            sync.RWMutex
	methods       map[string]*Config
	defaultConfig *Config
}

// NewRateLimitedMethods creates a method registry with defaultCfg as the fallback.
func NewRateLimitedMethods(defaultCfg *Config) *RateLimitedMethods {
	if defaultCfg == nil {
		defaultCfg = DefaultConfig()
	}
	return &RateLimitedMethods{
		methods:       make(map[string]*Config),
		defaultConfig: defaultCfg,
	}
}

// Set assigns cfg to method.
func (r *RateLimitedMethods) Set(method string, cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[method] = cfg
}

// Get returns method's configuration, or the default if none was set.
func (r *RateLimitedMethods) Get(method string) *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.methods[method]; ok {
		return cfg
	}
	return r.defaultConfig
}
