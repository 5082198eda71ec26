package observability

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// LogFieldTurnID is the field name for the per-turn id.
	LogFieldTurnID = "turn_id"
	// LogFieldSessionID is the field name for the conversation session id.
	LogFieldSessionID = "session_id"
	// LogFieldRoute is the field name for the state machine route taken.
	LogFieldRoute = "route"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldMessageLen is the field name for message length.
	LogFieldMessageLen = "message_length"
)

// TurnContext carries structured logging state for one processed user message.
type TurnContext struct {
	TurnID    string
	SessionID string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewTurnContext creates a turn context with a generated turn id.
func NewTurnContext(logger *slog.Logger, sessionID string) *TurnContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &TurnContext{
		TurnID:    uuid.New().String(),
		SessionID: sessionID,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (t *TurnContext) Info(msg string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, t.with(attrs...)...)
}

// Debug logs a debug message.
func (t *TurnContext) Debug(msg string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, t.with(attrs...)...)
}

// Warn logs a warning message.
func (t *TurnContext) Warn(msg string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, t.with(attrs...)...)
}

// Error logs an error message with the error.
func (t *TurnContext) Error(msg string, err error, attrs ...slog.Attr) {
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	t.Logger.LogAttrs(context.Background(), slog.LevelError, msg, t.with(attrs...)...)
}

// Duration returns the elapsed time since the turn started.
func (t *TurnContext) Duration() time.Duration {
	return time.Since(t.StartTime)
}

// Finish logs the end of the turn with its route and latency.
func (t *TurnContext) Finish(route string, replyLen int) {
	t.Info("turn processed",
		slog.String(LogFieldRoute, route),
		slog.Int(LogFieldMessageLen, replyLen),
		slog.Int64(LogFieldDuration, t.Duration().Milliseconds()))
}

func (t *TurnContext) with(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldTurnID, t.TurnID),
		slog.String(LogFieldSessionID, t.SessionID),
	}
	return append(base, attrs...)
}

type ctxKey struct{}

// WithTurnContext adds the turn context to the context.
func WithTurnContext(ctx context.Context, turn *TurnContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, turn)
}

// FromContext extracts the turn context from the context.
func FromContext(ctx context.Context) (*TurnContext, bool) {
	turn, ok := ctx.Value(ctxKey{}).(*TurnContext)
	return turn, ok
}

// SessionID returns the session id carried by ctx, or "" when none is attached.
func SessionID(ctx context.Context) string {
	if turn, ok := FromContext(ctx); ok {
		return turn.SessionID
	}
	return ""
}

// Truncate shortens s to at most maxRunes runes and marks the cut with "...".
// It never splits a multibyte rune.
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
