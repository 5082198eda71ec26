package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/acutie/plugin/ai/assessment"
	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/router"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		task     router.TaskType
		ctx      Context
		contains []string
		system   bool
	}{
		{
			name:     "sentiment",
			task:     router.TaskSentimentAnalysis,
			ctx:      Context{Message: "I can't stop worrying"},
			contains: []string{"Message: I can't stop worrying", "ONE WORD"},
		},
		{
			name:     "crisis primary and secondary share wording",
			task:     router.TaskCrisisDetectionSecondary,
			ctx:      Context{Message: "no way out"},
			contains: []string{"no way out", "between 0.0 and 1.0"},
		},
		{
			name: "assessment question",
			task: router.TaskAssessmentQuestion,
			ctx: Context{
				Condition:     "anxiety",
				Covered:       []string{"duration", "frequency"},
				NextDimension: "intensity",
				Recent: []conversation.Message{
					{Role: conversation.RoleAssistant, Text: "How often?"},
					{Role: conversation.RoleUser, Text: "daily"},
				},
			},
			contains: []string{"anxiety", "duration, frequency", "Topic to ask about now: intensity", "user: daily"},
			system:   true,
		},
		{
			name:     "diagnosis formatting",
			task:     router.TaskDiagnosisFormatting,
			ctx:      Context{Analysis: `{"primary_conditions":["anxiety"]}`},
			contains: []string{`"primary_conditions"`, "preliminary assessment"},
			system:   true,
		},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Build(tt.task, tt.ctx)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			assert.Equal(t, tt.system, r.System(tt.task) != "")
		})
	}
}

func TestBuild_UnknownTask(t *testing.T) {
	_, err := NewRegistry().Build(router.TaskIntentClassification, Context{})
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestRegistry_Versions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddSet("v2", map[router.TaskType]Template{
		router.TaskSentimentAnalysis: {User: "v2 sentiment: {{.Message}}"},
	}))
	require.NoError(t, r.SetVersion("v2"))

	out, err := r.Build(router.TaskSentimentAnalysis, Context{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "v2 sentiment: hi", out)

	// Tasks absent from v2 fall back to v1.
	out, err = r.Build(router.TaskGreetingNeutral, Context{Message: "hi"})
	require.NoError(t, err)
	assert.Contains(t, out, "Introduce yourself as Acutie")

	// Other registries keep their own active version.
	out, err = NewRegistry().Build(router.TaskSentimentAnalysis, Context{Message: "hi"})
	require.NoError(t, err)
	assert.NotEqual(t, "v2 sentiment: hi", out)

	assert.Error(t, r.SetVersion("v9"))
	assert.Error(t, r.AddSet("bad", map[router.TaskType]Template{"x": {User: "{{.Oops"}}))
}

func TestFixedTexts(t *testing.T) {
	assert.Contains(t, CrisisResources, "988")
	assert.Equal(t, errorMessages["unknown"], ErrorMessage("something_else"))
	assert.Contains(t, ErrorMessage("rate_limit"), "high traffic")

	for _, d := range assessment.All() {
		assert.NotEqual(t, AssessmentFallback, Question(d), "dimension %s", d)
	}
	assert.Equal(t, AssessmentFallback, Question("appetite"))
}
