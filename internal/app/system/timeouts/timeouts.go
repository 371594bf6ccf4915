// Package timeouts provides centralized timeout values for handler operations.
//
// Handlers wrap their work in context.WithTimeout using these values so a
// slow backend or database cannot pin a request forever.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks
//   - Short: audit writes and other single-document operations
//   - Gateway: one page's worth of backend calls
//   - Long: multi-call workflows (create group + reload, enroll + reload)
//   - Batch: CSV imports and spreadsheet exports
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultGateway = 15 * time.Second
	DefaultLong    = 30 * time.Second
	DefaultBatch   = 2 * time.Minute
)

var mu sync.RWMutex

var (
	ping    = DefaultPing
	short   = DefaultShort
	gateway = DefaultGateway
	long    = DefaultLong
	batch   = DefaultBatch
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Gateway returns the timeout for rendering a page backed by backend calls.
func Gateway() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return gateway
}

// Long returns the timeout for multi-step workflows.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the timeout for bulk imports and exports.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Gateway time.Duration
	Long    time.Duration
	Batch   time.Duration
}

// Configure sets custom timeout values. Zero values in the config are ignored.
// Call during startup before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Gateway > 0 {
		gateway = cfg.Gateway
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	gateway = DefaultGateway
	long = DefaultLong
	batch = DefaultBatch
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_GATEWAY,
// TIMEOUT_LONG and TIMEOUT_BATCH (Go durations, e.g. "5s"). Invalid or
// non-positive values are skipped. Returns how many were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	configured := 0
	for env, dst := range map[string]*time.Duration{
		"TIMEOUT_PING":    &ping,
		"TIMEOUT_SHORT":   &short,
		"TIMEOUT_GATEWAY": &gateway,
		"TIMEOUT_LONG":    &long,
		"TIMEOUT_BATCH":   &batch,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			configured++
		}
	}
	return configured
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:    ping,
		Short:   short,
		Gateway: gateway,
		Long:    long,
		Batch:   batch,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context ended because the deadline passed.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "roster csv import")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
