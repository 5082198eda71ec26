package router

import (
	"log/slog"
	"sort"
)

// DefaultConfig is the conservative low-cost configuration used for unknown tasks.
var DefaultConfig = ModelConfig{
	Provider:    ProviderOpenAI,
	Model:       "gpt-4o-mini",
	MaxTokens:   500,
	Temperature: 0.7,
}

// defaultTable is the routing table of the reference deployment.
// Fast models handle classification-like tasks, reasoning models handle risk and diagnosis.
var defaultTable = map[TaskType]ModelConfig{
	TaskIntentClassification: {
		Provider: ProviderOpenAI,
		Model:    "text-embedding-3-small",
	},
	TaskSentimentAnalysis: {
		Provider:    ProviderAnthropic,
		Model:       "claude-3-5-haiku-20241022",
		MaxTokens:   50,
		Temperature: 0.3,
	},
	TaskCrisisDetectionPrimary: {
		Provider:    ProviderOpenAI,
		Model:       "gpt-5",
		MaxTokens:   800,
		Temperature: 0.3,
	},
	TaskCrisisDetectionSecondary: {
		Provider:    ProviderAnthropic,
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   800,
		Temperature: 0.3,
	},
	TaskGreetingEmpathetic: {
		Provider:    ProviderAnthropic,
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   400,
		Temperature: 0.7,
		Cacheable:   true,
	},
	TaskGreetingNeutral: {
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o-mini",
		MaxTokens:   300,
		Temperature: 0.7,
	},
	TaskAssessmentQuestion: {
		Provider:    ProviderAnthropic,
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   400,
		Temperature: 0.8,
		Cacheable:   true,
	},
	TaskResponseExtraction: {
		Provider:    ProviderAnthropic,
		Model:       "claude-3-5-haiku-20241022",
		MaxTokens:   300,
		Temperature: 0.3,
	},
	TaskDiagnosisAnalysis: {
		Provider:    ProviderOpenAI,
		Model:       "gpt-5",
		MaxTokens:   1000,
		Temperature: 0.4,
	},
	TaskDiagnosisFormatting: {
		Provider:    ProviderAnthropic,
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   1000,
		Temperature: 0.6,
		Cacheable:   true,
	},
}

// Service implements RouterService over a fixed routing table.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	table map[TaskType]ModelConfig
}

// Config contains the configuration for the router service.
type Config struct {
	// Overrides replaces table entries per task (e.g. from a config file).
	// A zero-valued field in an override keeps the table value.
	Overrides map[TaskType]ModelConfig
}

// NewService creates a new router service.
func NewService(cfg Config) *Service {
	table := make(map[TaskType]ModelConfig, len(defaultTable)+len(cfg.Overrides))
	for task, mc := range defaultTable {
		table[task] = mc
	}
	for task, override := range cfg.Overrides {
		table[task] = merge(table[task], override)
		slog.Debug("model routing override applied",
			"task", task,
			"provider", table[task].Provider,
			"model", table[task].Model)
	}
	return &Service{table: table}
}

// ConfigFor returns the model configuration for the task.
func (s *Service) ConfigFor(task TaskType) ModelConfig {
	mc, ok := s.table[task]
	if !ok {
		slog.Debug("no route for task, using default model", "task", task)
		mc = DefaultConfig
	}
	mc.Task = task
	return mc
}

// Tasks returns the routed task types in stable order.
func (s *Service) Tasks() []TaskType {
	tasks := make([]TaskType, 0, len(s.table))
	for task := range s.table {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i] < tasks[j] })
	return tasks
}

func merge(base, override ModelConfig) ModelConfig {
	if override.Provider != "" {
		base.Provider = override.Provider
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	if override.Temperature > 0 {
		base.Temperature = override.Temperature
	}
	if override.Cacheable {
		base.Cacheable = true
	}
	if base.IsZero() {
		return DefaultConfig
	}
	return base
}

// Ensure Service implements RouterService
var _ RouterService = (*Service)(nil)
