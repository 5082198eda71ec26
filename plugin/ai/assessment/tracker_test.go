package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  Dimension
	}{
		{"duration", DimensionDuration},
		{"how_long", DimensionDuration},
		{"How Long", DimensionDuration},
		{"time-period", DimensionDuration},
		{"how_often", DimensionFrequency},
		{"severity", DimensionIntensity},
		{"dailyImpact", DimensionDailyImpact},
		{"impact_areas", DimensionDailyImpact},
		{"causes", DimensionTriggers},
		{"physicalSymptoms", DimensionPhysicalSymptoms},
		{"coping_mechanisms", DimensionCoping},
		{"supportSystem", DimensionSupportSystem},
		{"support", DimensionSupportSystem},
		{"appetite", Dimension("appetite")},
		{"Sleep Quality", Dimension("sleep_quality")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"how_long", "HowOften", "daily life", "coping-mechanisms", "unknownThing", "support"}
	for alias := range aliases {
		inputs = append(inputs, alias)
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(string(once)), "input %q", in)
	}
}

func TestDimensionCategory(t *testing.T) {
	assert.Equal(t, CategoryCore, DimensionIntensity.Category())
	assert.Equal(t, CategoryImpact, DimensionTriggers.Category())
	assert.Equal(t, CategoryContext, DimensionCoping.Category())
	assert.False(t, Dimension("appetite").IsCanonical())
	assert.Len(t, All(), 8)
}

func TestShouldTrigger(t *testing.T) {
	tracker := NewTracker()
	full := All()
	criteria := []Dimension{
		DimensionDuration, DimensionFrequency, DimensionIntensity,
		DimensionTriggers, DimensionDailyImpact, DimensionPhysicalSymptoms,
	}

	tests := []struct {
		name    string
		snap    Snapshot
		trigger bool
		reason  Reason
	}{
		{"empty", Snapshot{}, false, ReasonInsufficientQuestions},
		{"full coverage below floor", Snapshot{QuestionsAsked: 7, Answered: full}, false, ReasonInsufficientQuestions},
		{"criteria met at floor", Snapshot{QuestionsAsked: 8, Answered: criteria}, true, ReasonCriteriaMet},
		{"aliases count", Snapshot{QuestionsAsked: 9, Answered: []Dimension{
			"how_long", "how_often", "severity", "causes", "impact", "physical",
		}}, true, ReasonCriteriaMet},
		{"missing context", Snapshot{QuestionsAsked: 10, Answered: criteria[:5]}, false, ReasonContinueGathering},
		{"ceiling with nothing", Snapshot{QuestionsAsked: 13}, true, ReasonMaxQuestions},
		{"past ceiling", Snapshot{QuestionsAsked: 20, Answered: []Dimension{"duration"}}, true, ReasonMaxQuestions},
		{"unknown names do not count", Snapshot{QuestionsAsked: 12, Answered: []Dimension{
			"appetite", "sleep", "mood", "energy", "focus", "worry", "guilt", "anger",
		}}, false, ReasonContinueGathering},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tracker.ShouldTrigger(tt.snap)
			assert.Equal(t, tt.trigger, d.Trigger)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestShouldTriggerMonotonic(t *testing.T) {
	tracker := NewTracker()
	dims := All()

	// Every triggering (questions, prefix-of-dims) state keeps triggering as both grow.
	for q := 0; q <= 15; q++ {
		for n := 0; n <= len(dims); n++ {
			if !tracker.ShouldTrigger(Snapshot{QuestionsAsked: q, Answered: dims[:n]}).Trigger {
				continue
			}
			for q2 := q; q2 <= 15; q2++ {
				for n2 := n; n2 <= len(dims); n2++ {
					assert.True(t, tracker.ShouldTrigger(Snapshot{QuestionsAsked: q2, Answered: dims[:n2]}).Trigger,
						"(%d,%d) triggered but (%d,%d) did not", q, n, q2, n2)
				}
			}
		}
	}
}

func TestCoverageMissing(t *testing.T) {
	tracker := NewTracker()

	cov := tracker.Coverage([]Dimension{DimensionDuration, DimensionTriggers})
	assert.Equal(t, 1, cov.Core)
	assert.Equal(t, 1, cov.Impact)
	assert.Equal(t, 0, cov.Context)
	assert.False(t, cov.Complete)
	assert.Equal(t, []Dimension{
		DimensionFrequency, DimensionIntensity, DimensionDailyImpact, DimensionPhysicalSymptoms,
	}, cov.Missing)
}

func TestNextDimension(t *testing.T) {
	tracker := NewTracker()

	tests := []struct {
		name     string
		answered []Dimension
		want     Dimension
	}{
		{"nothing answered", nil, DimensionDuration},
		{"core partly", []Dimension{"duration", "intensity"}, DimensionFrequency},
		{"core done", []Dimension{"duration", "frequency", "intensity"}, DimensionDailyImpact},
		{"impact done", []Dimension{"duration", "frequency", "intensity", "impact", "triggers"}, DimensionPhysicalSymptoms},
		{"everything", All(), DimensionSupportSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracker.NextDimension(Snapshot{Answered: tt.answered}))
		})
	}
}

func TestReadinessScore(t *testing.T) {
	tracker := NewTracker()

	assert.InDelta(t, 0.0, tracker.ReadinessScore(Snapshot{}), 1e-9)
	assert.InDelta(t, 0.2, tracker.ReadinessScore(Snapshot{QuestionsAsked: 4}), 1e-9)
	assert.InDelta(t, 0.4+0.3, tracker.ReadinessScore(Snapshot{
		QuestionsAsked: 12,
		Answered:       CoreDimensions,
	}), 1e-9)
	assert.InDelta(t, 1.0, tracker.ReadinessScore(Snapshot{QuestionsAsked: 13, Answered: All()}), 1e-9)
}

func TestStatus(t *testing.T) {
	tracker := NewTracker()

	st := tracker.Status(Snapshot{QuestionsAsked: 3, Answered: []Dimension{"duration"}})
	assert.False(t, st.Decision.Trigger)
	assert.Equal(t, DimensionFrequency, st.Next)
	assert.Equal(t, 1, st.Coverage.Core)

	done := tracker.Status(Snapshot{QuestionsAsked: 13})
	assert.True(t, done.Decision.Trigger)
	assert.Equal(t, Dimension(""), done.Next)
}
