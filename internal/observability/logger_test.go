package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTurnContextLogsBaseFields(t *testing.T) {
	var buf bytes.Buffer
	turn := NewTurnContext(newJSONLogger(&buf), "session-1")

	turn.Info("hello", slog.String("extra", "x"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "session-1", record[LogFieldSessionID])
	assert.Equal(t, turn.TurnID, record[LogFieldTurnID])
	assert.Equal(t, "x", record["extra"])
}

func TestTurnContextError(t *testing.T) {
	var buf bytes.Buffer
	turn := NewTurnContext(newJSONLogger(&buf), "session-2")

	turn.Error("save failed", errors.New("db down"))
	assert.True(t, strings.Contains(buf.String(), "db down"))
	assert.True(t, strings.Contains(buf.String(), `"level":"ERROR"`))
}

func TestTurnContextRoundTrip(t *testing.T) {
	turn := NewTurnContext(nil, "session-3")
	ctx := WithTurnContext(context.Background(), turn)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, turn, got)
	assert.Equal(t, "session-3", SessionID(ctx))
	assert.Equal(t, "", SessionID(context.Background()))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello..."},
		{"multibyte kept whole", "héllo wörld", 7, "héllo w..."},
		{"cjk", "我很难过我很难过", 3, "我很难..."},
		{"emoji", "😀😀😀", 2, "😀😀..."},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
