// Package intent classifies user messages by nearest-neighbour similarity
// against curated exemplar utterances.
package intent

import "context"

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentCrisis              Intent = "crisis"
	IntentFirstMessage        Intent = "first_message"
	IntentDemographicResponse Intent = "demographic_response"
	IntentAssessmentResponse  Intent = "assessment_response"
	IntentReadyForDiagnosis   Intent = "ready_for_diagnosis"
	IntentOffTopic            Intent = "off_topic"
	IntentUnclear             Intent = "unclear"
)

// Result is a classification with the best similarity score.
type Result struct {
	Intent     Intent
	Confidence float64
	// Exemplar is the closest exemplar utterance, empty when Unclear.
	Exemplar string
}

// IntentClassifier maps text to an intent. Implementations never fail;
// any backend failure degrades to IntentUnclear.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) Result
}
