// Package router maps logical conversation tasks to concrete model configurations.
package router

// RouterService defines the model routing interface.
// Consumers: gateway callers in the intent, crisis and orchestrator packages.
type RouterService interface {
	// ConfigFor returns the model configuration for a task.
	// Unknown tasks resolve to the low-cost default rather than an error.
	ConfigFor(task TaskType) ModelConfig
}

// TaskType represents the type of task for model selection.
type TaskType string

const (
	TaskIntentClassification     TaskType = "intent_classification"
	TaskSentimentAnalysis        TaskType = "sentiment_analysis"
	TaskCrisisDetectionPrimary   TaskType = "crisis_detection_primary"
	TaskCrisisDetectionSecondary TaskType = "crisis_detection_secondary"
	TaskGreetingEmpathetic       TaskType = "greeting_empathetic"
	TaskGreetingNeutral          TaskType = "greeting_neutral"
	TaskAssessmentQuestion       TaskType = "assessment_question"
	TaskResponseExtraction       TaskType = "response_extraction"
	TaskDiagnosisAnalysis        TaskType = "diagnosis_analysis"
	TaskDiagnosisFormatting      TaskType = "diagnosis_formatting"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ModelConfig represents the configuration for a model.
// Values are immutable per deployment; callers receive copies.
type ModelConfig struct {
	Task        TaskType `json:"task"`
	Provider    string   `json:"provider" mapstructure:"provider"`
	Model       string   `json:"model" mapstructure:"model"`
	MaxTokens   int      `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32  `json:"temperature" mapstructure:"temperature"`
	Cacheable   bool     `json:"cacheable" mapstructure:"cacheable"`
}

// IsZero reports whether no model is configured.
func (c ModelConfig) IsZero() bool {
	return c.Provider == "" && c.Model == ""
}
