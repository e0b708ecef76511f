package llm

import (
	"context"
	"sync"
	"time"
)

// BreakerConfig holds the circuit breaker thresholds.
type BreakerConfig struct {
	// Threshold is the number of consecutive provider failures before
	// the circuit trips open.
	Threshold int
	// ResetAfter is how long an open circuit waits before letting one
	// probe request through.
	ResetAfter time.Duration
}

// DefaultBreakerConfig trips after 5 consecutive failures and probes
// again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 5, ResetAfter: 30 * time.Second}
}

// BreakerCompleter wraps a TextCompleter with a circuit breaker. When
// the provider fails repeatedly, calls fail fast with a retryable error
// instead of waiting out the request timeout each time; the assisted
// compiler's fallback then fires immediately. A successful probe closes
// the circuit again.
type BreakerCompleter struct {
	inner TextCompleter
	cfg   BreakerConfig

	mu               sync.Mutex
	consecutiveFails int
	lastFailure      time.Time
	probing          bool
}

// NewBreakerCompleter wraps inner with the given breaker config.
func NewBreakerCompleter(inner TextCompleter, cfg BreakerConfig) *BreakerCompleter {
	return &BreakerCompleter{inner: inner, cfg: cfg}
}

// Complete implements TextCompleter.
func (b *BreakerCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if err := b.allow(); err != nil {
		return nil, err
	}

	result, err := b.inner.Complete(ctx, req)
	b.record(err == nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Model implements TextCompleter.
func (b *BreakerCompleter) Model() string {
	return b.inner.Model()
}

// Open reports whether the circuit is currently rejecting requests.
func (b *BreakerCompleter) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFails >= b.cfg.Threshold &&
		time.Since(b.lastFailure) <= b.cfg.ResetAfter
}

func (b *BreakerCompleter) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveFails < b.cfg.Threshold {
		return nil
	}
	if time.Since(b.lastFailure) > b.cfg.ResetAfter && !b.probing {
		// One probe request may pass; further calls keep failing fast
		// until the probe reports back.
		b.probing = true
		return nil
	}
	return &Error{
		Type:      ErrorTypeEndpoint,
		Message:   "completion provider circuit open",
		Retryable: true,
	}
}

func (b *BreakerCompleter) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if success {
		b.consecutiveFails = 0
		return
	}
	b.consecutiveFails++
	b.lastFailure = time.Now()
}

var _ TextCompleter = (*BreakerCompleter)(nil)
