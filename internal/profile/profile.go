package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the triage engine.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// DSN points to where acutie stores conversation state
	DSN string
	// Version is the current version of the engine
	Version string

	// Hot cache
	RedisAddr     string        // ACUTIE_REDIS_ADDR (empty: in-process LRU)
	RedisPassword string        // ACUTIE_REDIS_PASSWORD
	RedisDB       int           // ACUTIE_REDIS_DB (default: 0)
	SessionTTL    time.Duration // ACUTIE_SESSION_TTL (default: 2h)

	// Model providers
	OpenAIAPIKey     string // ACUTIE_OPENAI_API_KEY
	OpenAIBaseURL    string // ACUTIE_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AnthropicAPIKey  string // ACUTIE_ANTHROPIC_API_KEY
	AnthropicBaseURL string // ACUTIE_ANTHROPIC_BASE_URL (default: https://api.anthropic.com/v1)
	EmbeddingModel   string // ACUTIE_EMBEDDING_MODEL (default: text-embedding-3-small)

	// Gateway
	ModelTimeout     time.Duration // ACUTIE_MODEL_TIMEOUT (default: 30s)
	ModelMaxAttempts int           // ACUTIE_MODEL_MAX_ATTEMPTS (default: 3)
	ProviderRPS      float64       // ACUTIE_PROVIDER_RPS (default: 5)

	// Conversation
	IntentThreshold float64 // ACUTIE_INTENT_THRESHOLD (default: 0.3)
	RetentionDays   int     // ACUTIE_RETENTION_DAYS (default: 30)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// UseRedis reports whether the hot cache should be backed by Redis.
func (p *Profile) UseRedis() bool {
	return p.RedisAddr != ""
}

// HasModelProvider returns true if at least one chat provider is configured.
func (p *Profile) HasModelProvider() bool {
	return p.OpenAIAPIKey != "" || p.AnthropicAPIKey != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return f
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

// FromEnv loads the cache, provider and conversation settings from ACUTIE_* variables.
// Fields already set by the caller (flags, config file) are kept.
func (p *Profile) FromEnv() {
	setString := func(dst *string, key, def string) {
		if *dst == "" {
			*dst = getEnvWithDefault(key, def)
		}
	}

	setString(&p.RedisAddr, "ACUTIE_REDIS_ADDR", "")
	setString(&p.RedisPassword, "ACUTIE_REDIS_PASSWORD", "")
	if p.RedisDB == 0 {
		p.RedisDB = getIntEnv("ACUTIE_REDIS_DB", 0)
	}
	if p.SessionTTL == 0 {
		p.SessionTTL = getDurationEnv("ACUTIE_SESSION_TTL", 2*time.Hour)
	}

	setString(&p.OpenAIAPIKey, "ACUTIE_OPENAI_API_KEY", "")
	setString(&p.OpenAIBaseURL, "ACUTIE_OPENAI_BASE_URL", "https://api.openai.com/v1")
	setString(&p.AnthropicAPIKey, "ACUTIE_ANTHROPIC_API_KEY", "")
	setString(&p.AnthropicBaseURL, "ACUTIE_ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1")
	setString(&p.EmbeddingModel, "ACUTIE_EMBEDDING_MODEL", "text-embedding-3-small")

	if p.ModelTimeout == 0 {
		p.ModelTimeout = getDurationEnv("ACUTIE_MODEL_TIMEOUT", 30*time.Second)
	}
	if p.ModelMaxAttempts == 0 {
		p.ModelMaxAttempts = getIntEnv("ACUTIE_MODEL_MAX_ATTEMPTS", 3)
	}
	if p.ProviderRPS == 0 {
		p.ProviderRPS = getFloatEnv("ACUTIE_PROVIDER_RPS", 5)
	}
	if p.IntentThreshold == 0 {
		p.IntentThreshold = getFloatEnv("ACUTIE_INTENT_THRESHOLD", 0.3)
	}
	if p.RetentionDays == 0 {
		p.RetentionDays = getIntEnv("ACUTIE_RETENTION_DAYS", 30)
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalises the profile and fills derived defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.Driver == "postgres" {
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
		return nil
	}

	if p.DSN != "" {
		return nil
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir
	p.DSN = filepath.Join(dataDir, fmt.Sprintf("acutie_%s.db", p.Mode))

	return nil
}
