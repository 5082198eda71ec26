package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ACUTIE_REDIS_ADDR",
	"ACUTIE_REDIS_PASSWORD",
	"ACUTIE_REDIS_DB",
	"ACUTIE_SESSION_TTL",
	"ACUTIE_OPENAI_API_KEY",
	"ACUTIE_OPENAI_BASE_URL",
	"ACUTIE_ANTHROPIC_API_KEY",
	"ACUTIE_ANTHROPIC_BASE_URL",
	"ACUTIE_EMBEDDING_MODEL",
	"ACUTIE_MODEL_TIMEOUT",
	"ACUTIE_MODEL_MAX_ATTEMPTS",
	"ACUTIE_PROVIDER_RPS",
	"ACUTIE_INTENT_THRESHOLD",
	"ACUTIE_RETENTION_DAYS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnv(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "", p.RedisAddr)
	assert.False(t, p.UseRedis())
	assert.Equal(t, 2*time.Hour, p.SessionTTL)
	assert.Equal(t, "https://api.openai.com/v1", p.OpenAIBaseURL)
	assert.Equal(t, "https://api.anthropic.com/v1", p.AnthropicBaseURL)
	assert.Equal(t, "text-embedding-3-small", p.EmbeddingModel)
	assert.Equal(t, 30*time.Second, p.ModelTimeout)
	assert.Equal(t, 3, p.ModelMaxAttempts)
	assert.InDelta(t, 5.0, p.ProviderRPS, 1e-9)
	assert.InDelta(t, 0.3, p.IntentThreshold, 1e-9)
	assert.Equal(t, 30, p.RetentionDays)
	assert.False(t, p.HasModelProvider())
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		check    func(t *testing.T, p *Profile)
	}{
		{
			name:     "redis address",
			envVar:   "ACUTIE_REDIS_ADDR",
			envValue: "localhost:6379",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, "localhost:6379", p.RedisAddr)
				assert.True(t, p.UseRedis())
			},
		},
		{
			name:     "session ttl",
			envVar:   "ACUTIE_SESSION_TTL",
			envValue: "90m",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, 90*time.Minute, p.SessionTTL)
			},
		},
		{
			name:     "invalid ttl falls back",
			envVar:   "ACUTIE_SESSION_TTL",
			envValue: "soon",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, 2*time.Hour, p.SessionTTL)
			},
		},
		{
			name:     "anthropic key",
			envVar:   "ACUTIE_ANTHROPIC_API_KEY",
			envValue: "sk-ant-test",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, "sk-ant-test", p.AnthropicAPIKey)
				assert.True(t, p.HasModelProvider())
			},
		},
		{
			name:     "max attempts",
			envVar:   "ACUTIE_MODEL_MAX_ATTEMPTS",
			envValue: "5",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, 5, p.ModelMaxAttempts)
			},
		},
		{
			name:     "invalid attempts falls back",
			envVar:   "ACUTIE_MODEL_MAX_ATTEMPTS",
			envValue: "many",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, 3, p.ModelMaxAttempts)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.envVar, tt.envValue)

			p := &Profile{}
			p.FromEnv()
			tt.check(t, p)
		})
	}
}

func TestProfileFromEnvKeepsExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACUTIE_REDIS_ADDR", "env:6379")

	p := &Profile{RedisAddr: "flag:6379", SessionTTL: time.Hour}
	p.FromEnv()

	assert.Equal(t, "flag:6379", p.RedisAddr)
	assert.Equal(t, time.Hour, p.SessionTTL)
}

func TestProfileValidate(t *testing.T) {
	t.Run("sqlite DSN derived from data dir", func(t *testing.T) {
		dir := t.TempDir()
		p := &Profile{Mode: "dev", Data: dir}
		require.NoError(t, p.Validate())
		assert.Equal(t, "sqlite", p.Driver)
		assert.Equal(t, filepath.Join(dir, "acutie_dev.db"), p.DSN)
	})

	t.Run("unknown mode becomes demo", func(t *testing.T) {
		p := &Profile{Mode: "staging", Data: t.TempDir()}
		require.NoError(t, p.Validate())
		assert.Equal(t, "demo", p.Mode)
	})

	t.Run("postgres requires DSN", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "postgres"}
		assert.Error(t, p.Validate())
	})

	t.Run("unsupported driver", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "mysql", DSN: "x"}
		assert.Error(t, p.Validate())
	})

	t.Run("missing data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Data: filepath.Join(os.TempDir(), "acutie-does-not-exist-42")}
		assert.Error(t, p.Validate())
	})
}
