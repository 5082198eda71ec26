// Package timeout defines centralized timeout constants for model and storage operations.
package timeout

import "time"

const (
	// ModelCallTimeout is the hard timeout for a single model attempt.
	ModelCallTimeout = 30 * time.Second

	// CrisisCallTimeout bounds each crisis-ensemble model call.
	CrisisCallTimeout = 30 * time.Second

	// EmbeddingTimeout is the timeout for embedding generation.
	EmbeddingTimeout = 30 * time.Second

	// CacheOpTimeout bounds a single hot-cache round trip.
	CacheOpTimeout = 5 * time.Second

	// StoreOpTimeout bounds a single durable-store statement.
	StoreOpTimeout = 10 * time.Second

	// SessionTTL is the hot-cache idle timeout for conversation state.
	SessionTTL = 2 * time.Hour

	// MaxModelAttempts is the default number of attempts per model invocation.
	MaxModelAttempts = 3

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay = time.Second

	// RetryMaxDelay caps a single backoff delay.
	RetryMaxDelay = 10 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
