package breaker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is the shared state backend for breaker counters. Keys are
// plain strings; missing keys read as zero.
type Store interface {
	GetInt(ctx context.Context, key string) (int64, error)
	GetFloat(ctx context.Context, key string) (float64, error)
	Set(ctx context.Context, key string, value interface{}) error
	Incr(ctx context.Context, key string) (int64, error)
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type CircuitBreaker interface {
	Allow(ctx context.Context) bool
	RecordSuccess(ctx context.Context)
	RecordFailure(ctx context.Context)
}

type Config struct {
	Threshold     int
	BaseTimeout   time.Duration
	MaxTimeout    time.Duration
	TimeoutFactor int
}

// Breaker gates calls to a named upstream. It opens once Threshold
// consecutive failures accumulate, stays open for the current timeout,
// then lets a single probe through per window. Failures while open
// multiply the timeout up to MaxTimeout; any success closes the circuit
// and restores the base timeout.
type Breaker struct {
	name   string
	cfg    Config
	store  Store
	logger *zap.Logger
}

func New(name string, cfg Config, store Store, logger *zap.Logger) CircuitBreaker {
	return &Breaker{name: name, cfg: cfg, store: store, logger: logger}
}

func (b *Breaker) failuresKey() string { return fmt.Sprintf("circuit_breaker:%s:failures", b.name) }
func (b *Breaker) lastKey() string     { return fmt.Sprintf("circuit_breaker:%s:last_failure", b.name) }
func (b *Breaker) timeoutKey() string  { return fmt.Sprintf("circuit_breaker:%s:timeout", b.name) }
func (b *Breaker) probeKey() string    { return fmt.Sprintf("circuit_breaker:%s:probe", b.name) }

// Allow reports whether a call may go out right now. Store errors read
// as a closed circuit so a degraded lock store never blocks payments.
func (b *Breaker) Allow(ctx context.Context) bool {
	failures, err := b.store.GetInt(ctx, b.failuresKey())
	if err != nil {
		b.logger.Warn("breaker store read failed", zap.String("breaker", b.name), zap.Error(err))
		return true
	}

	if failures < int64(b.cfg.Threshold) {
		return true
	}

	last, err := b.store.GetFloat(ctx, b.lastKey())
	if err != nil {
		b.logger.Warn("breaker store read failed", zap.String("breaker", b.name), zap.Error(err))
		return true
	}

	timeout := b.currentTimeout(ctx)
	since := time.Duration(float64(time.Now().UnixNano()) - last)

	if since < timeout {
		b.logger.Warn("circuit open",
			zap.String("breaker", b.name),
			zap.Duration("sinceLastFailure", since),
			zap.Duration("timeout", timeout))
		return false
	}

	// Timeout elapsed: exactly one caller per window gets a probe.
	probe, err := b.store.SetNX(ctx, b.probeKey(), 1, timeout)
	if err != nil {
		b.logger.Warn("breaker store write failed", zap.String("breaker", b.name), zap.Error(err))
		return true
	}

	if probe {
		b.logger.Info("circuit allowing probe request",
			zap.String("breaker", b.name),
			zap.Duration("sinceLastFailure", since))
	}

	return probe
}

func (b *Breaker) RecordSuccess(ctx context.Context) {
	if err := b.store.Set(ctx, b.failuresKey(), 0); err != nil {
		b.logger.Warn("breaker store write failed", zap.String("breaker", b.name), zap.Error(err))
		return
	}

	_ = b.store.Set(ctx, b.timeoutKey(), b.cfg.BaseTimeout.Nanoseconds())
	_ = b.store.Del(ctx, b.probeKey())
}

func (b *Breaker) RecordFailure(ctx context.Context) {
	failures, err := b.store.Incr(ctx, b.failuresKey())
	if err != nil {
		b.logger.Warn("breaker store write failed", zap.String("breaker", b.name), zap.Error(err))
		return
	}

	_ = b.store.Set(ctx, b.lastKey(), float64(time.Now().UnixNano()))
	_ = b.store.Del(ctx, b.probeKey())

	// The opening failure keeps the base timeout; only failures past
	// the threshold stretch the window.
	if failures <= int64(b.cfg.Threshold) {
		return
	}

	current := b.currentTimeout(ctx)
	next := current * time.Duration(b.cfg.TimeoutFactor)
	if next > b.cfg.MaxTimeout {
		next = b.cfg.MaxTimeout
	}

	_ = b.store.Set(ctx, b.timeoutKey(), next.Nanoseconds())

	b.logger.Warn("circuit opening",
		zap.String("breaker", b.name),
		zap.Int64("failures", failures),
		zap.Duration("timeout", next))
}

func (b *Breaker) currentTimeout(ctx context.Context) time.Duration {
	stored, err := b.store.GetInt(ctx, b.timeoutKey())
	if err != nil || stored <= 0 {
		return b.cfg.BaseTimeout
	}
	return time.Duration(stored)
}
