// Package gateway issues requests to backend models through a uniform call
// interface with per-attempt timeout, retry with backoff, and typed failures.
package gateway

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/hrygo/acutie/internal/observability"
	"github.com/hrygo/acutie/plugin/ai"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
	"github.com/hrygo/acutie/plugin/ai/timeout"
)

// Invoker is the model call contract consumed by the crisis ensemble and orchestrator.
type Invoker interface {
	// Invoke calls the model named by cfg. It never returns an error;
	// failures are reported in the Result.
	Invoke(ctx context.Context, cfg router.ModelConfig, prompt string, opts ...Option) Result
}

// Result is the outcome of one Invoke.
type Result struct {
	OK       bool
	Text     string
	Kind     ErrorKind // empty on success
	Err      error     // last classified error, for logs only
	Attempts int
	Fallback string // user-safe message for Kind
	Latency  time.Duration
}

// Retryable reports whether the failure was transient.
func (r Result) Retryable() bool {
	return !r.OK && r.Kind.IsRetryable()
}

// Observer receives one record per Invoke.
type Observer interface {
	ObserveModelCall(cfg router.ModelConfig, kind ErrorKind, attempts int, latency time.Duration)
}

// Option customizes a single Invoke.
type Option func(*callOptions)

type callOptions struct {
	system string
}

// WithSystem sets the system prompt of the call.
func WithSystem(system string) Option {
	return func(o *callOptions) {
		o.system = system
	}
}

// Config contains the configuration for the gateway.
type Config struct {
	// Clients maps provider names to chat clients.
	Clients map[string]ai.ChatClient
	// Timeout bounds each attempt. Default: timeout.ModelCallTimeout.
	Timeout time.Duration
	// MaxAttempts is the total number of attempts. Default: timeout.MaxModelAttempts.
	MaxAttempts int
	// BaseDelay is the first backoff delay. Default: timeout.RetryBaseDelay.
	BaseDelay time.Duration
	// MaxDelay caps one backoff delay. Default: timeout.RetryMaxDelay.
	MaxDelay time.Duration
	// RatePerSecond limits calls per provider; 0 disables limiting.
	RatePerSecond float64
	// Burst is the limiter burst size. Default: 10.
	Burst int
	// Observer, when set, receives a record per call.
	Observer Observer
}

// Gateway implements Invoker.
type Gateway struct {
	clients     map[string]ai.ChatClient
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	limiter     *RateLimiter
	observer    Observer
}

// New creates a gateway.
func New(cfg Config) *Gateway {
	g := &Gateway{
		clients:     cfg.Clients,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		observer:    cfg.Observer,
	}
	if g.clients == nil {
		g.clients = make(map[string]ai.ChatClient)
	}
	if g.timeout <= 0 {
		g.timeout = timeout.ModelCallTimeout
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = timeout.MaxModelAttempts
	}
	if g.baseDelay <= 0 {
		g.baseDelay = timeout.RetryBaseDelay
	}
	if g.maxDelay <= 0 {
		g.maxDelay = timeout.RetryMaxDelay
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	g.limiter = NewRateLimiter(cfg.RatePerSecond, burst)
	return g
}

// Invoke calls the model with retry. Terminal errors fail after one attempt.
func (g *Gateway) Invoke(ctx context.Context, cfg router.ModelConfig, text string, opts ...Option) Result {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	sessionID := observability.SessionID(ctx)
	res := g.invoke(ctx, cfg, ai.ChatRequest{
		Model:       cfg.Model,
		System:      o.system,
		Prompt:      text,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, sessionID)
	res.Latency = time.Since(start)

	if res.OK {
		slog.Debug("model response",
			"session_id", sessionID,
			"task", cfg.Task,
			"model", cfg.Model,
			"attempts", res.Attempts,
			"response_length", len(res.Text),
			"latency_ms", res.Latency.Milliseconds())
	} else {
		res.Fallback = prompt.ErrorMessage(string(res.Kind))
		level := slog.LevelWarn
		if !res.Retryable() {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "model call failed",
			"session_id", sessionID,
			"task", cfg.Task,
			"model", cfg.Model,
			"kind", res.Kind,
			"attempts", res.Attempts,
			"error", errString(res.Err))
	}

	if g.observer != nil {
		g.observer.ObserveModelCall(cfg, res.Kind, res.Attempts, res.Latency)
	}
	return res
}

func (g *Gateway) invoke(ctx context.Context, cfg router.ModelConfig, req ai.ChatRequest, sessionID string) Result {
	client, ok := g.clients[cfg.Provider]
	if !ok {
		ce := ClassifyError(ErrProviderNotConfigured)
		return Result{Kind: ce.Kind, Err: ce}
	}

	var last *ClassifiedError
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx, cfg.Provider); err != nil {
			ce := ClassifyError(err)
			return Result{Kind: ce.Kind, Err: ce, Attempts: attempt - 1}
		}

		slog.Debug("model request",
			"session_id", sessionID,
			"task", cfg.Task,
			"model", cfg.Model,
			"attempt", attempt,
			"prompt_preview", observability.Truncate(req.Prompt, timeout.MaxTruncateLength),
			"temperature", cfg.Temperature,
			"max_tokens", cfg.MaxTokens,
			"cacheable", cfg.Cacheable)

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := client.Complete(callCtx, req)
		cancel()
		if err == nil {
			return Result{OK: true, Text: text, Attempts: attempt}
		}

		last = ClassifyError(err)
		willRetry := last.IsRetryable() && attempt < g.maxAttempts
		slog.Warn("model error",
			"session_id", sessionID,
			"task", cfg.Task,
			"model", cfg.Model,
			"kind", last.Kind,
			"attempt", attempt,
			"will_retry", willRetry,
			"error", err.Error())
		if !willRetry {
			return Result{Kind: last.Kind, Err: last, Attempts: attempt}
		}

		if err := sleep(ctx, g.backoff(attempt, last.RetryAfter)); err != nil {
			return Result{Kind: KindTimeout, Err: ClassifyError(err), Attempts: attempt}
		}
	}
	return Result{Kind: last.Kind, Err: last, Attempts: g.maxAttempts}
}

// backoff returns base*2^(attempt-1), at least hint, jittered by ±50% and capped at maxDelay.
func (g *Gateway) backoff(attempt int, hint time.Duration) time.Duration {
	delay := g.baseDelay << (attempt - 1)
	if delay < hint {
		delay = hint
	}
	delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
	if delay > g.maxDelay {
		delay = g.maxDelay
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}


func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Ensure Gateway implements Invoker
var _ Invoker = (*Gateway)(nil)
