package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hrygo/acutie/plugin/ai"
)

// ErrorKind classifies a model call failure.
type ErrorKind string

const (
	KindRateLimit      ErrorKind = "rate_limit"
	KindContextLength  ErrorKind = "context_length"
	KindTimeout        ErrorKind = "timeout"
	KindAuthentication ErrorKind = "authentication"
	KindConnection     ErrorKind = "connection"
	KindNotConfigured  ErrorKind = "not_configured"
	KindUnknown        ErrorKind = "unknown"
)

// ErrProviderNotConfigured is returned when a route names a provider with no client.
var ErrProviderNotConfigured = errors.New("provider not configured")

// IsRetryable reports whether a failure of this kind is retried.
// Unknown failures are retried; authentication, context length and
// missing providers fail fast.
func (k ErrorKind) IsRetryable() bool {
	switch k {
	case KindRateLimit, KindTimeout, KindConnection, KindUnknown:
		return true
	default:
		return false
	}
}

// ClassifiedError wraps an error with its kind and retry guidance.
type ClassifiedError struct {
	Kind       ErrorKind
	Original   error
	RetryAfter time.Duration // Suggested minimum delay before retry
}

// Error returns a formatted error message.
func (c *ClassifiedError) Error() string {
	if c.Original == nil {
		return fmt.Sprintf("classified error: kind=%s", c.Kind)
	}
	return fmt.Sprintf("%s: %v", c.Kind, c.Original)
}

// Unwrap returns the original error for errors.Is/As.
func (c *ClassifiedError) Unwrap() error {
	return c.Original
}

// IsRetryable returns true if the error is transient and should be retried.
func (c *ClassifiedError) IsRetryable() bool {
	return c.Kind.IsRetryable()
}

// ClassifyError analyzes an error and determines its kind.
// HTTP status codes win over message patterns when the provider exposes one.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrProviderNotConfigured) {
		return &ClassifiedError{Kind: KindNotConfigured, Original: err}
	}

	var perr *ai.ProviderError
	if errors.As(err, &perr) && perr.StatusCode > 0 {
		if kind, ok := kindForStatus(perr.StatusCode, err); ok {
			return &ClassifiedError{Kind: kind, Original: err, RetryAfter: retryAfter(kind)}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeoutError(err) {
		return &ClassifiedError{Kind: KindTimeout, Original: err, RetryAfter: retryAfter(KindTimeout)}
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case containsAny(errMsg, rateLimitPatterns):
		return &ClassifiedError{Kind: KindRateLimit, Original: err, RetryAfter: retryAfter(KindRateLimit)}
	case containsAny(errMsg, contextLengthPatterns):
		return &ClassifiedError{Kind: KindContextLength, Original: err}
	case containsAny(errMsg, authPatterns):
		return &ClassifiedError{Kind: KindAuthentication, Original: err}
	case isNetworkError(err):
		return &ClassifiedError{Kind: KindConnection, Original: err, RetryAfter: retryAfter(KindConnection)}
	}

	return &ClassifiedError{Kind: KindUnknown, Original: err}
}

func kindForStatus(status int, err error) (ErrorKind, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimit, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthentication, true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout, true
	case status == http.StatusRequestEntityTooLarge:
		return KindContextLength, true
	case status == http.StatusBadRequest && containsAny(strings.ToLower(err.Error()), contextLengthPatterns):
		return KindContextLength, true
	case status >= 500:
		// 529 overloaded and other 5xx are transient upstream failures.
		return KindConnection, true
	}
	return "", false
}

func retryAfter(kind ErrorKind) time.Duration {
	switch kind {
	case KindRateLimit:
		return 2 * time.Second
	case KindConnection:
		return time.Second
	default:
		return 0
	}
}

var (
	rateLimitPatterns = []string{
		"rate limit",
		"rate_limit",
		"ratelimit",
		"too many requests",
		"overloaded",
	}
	contextLengthPatterns = []string{
		"context length",
		"context_length",
		"context window",
		"maximum context",
		"too many tokens",
		"prompt is too long",
	}
	authPatterns = []string{
		"unauthorized",
		"invalid api key",
		"invalid x-api-key",
		"incorrect api key",
		"authentication",
		"permission denied",
		"forbidden",
	}
)

// isNetworkError checks if an error is network-related (transient).
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return containsAny(strings.ToLower(err.Error()), []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"network is unreachable",
		"no such host",
		"temporary failure",
		"dial tcp",
		"unexpected eof",
		"connection lost",
	})
}

// isTimeoutError checks if an error is timeout-related (transient).
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return containsAny(strings.ToLower(err.Error()), []string{
		"timeout",
		"deadline exceeded",
		"i/o timeout",
		"operation timed out",
	})
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
