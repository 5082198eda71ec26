package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
)

var (
	sentimentNegative = conversation.Sentiment{Valence: -0.6, Arousal: 0.6}
	sentimentNeutral  = conversation.Sentiment{Valence: 0.0, Arousal: 0.3}
	sentimentPositive = conversation.Sentiment{Valence: 0.5, Arousal: 0.4}
)

// ParseSentiment maps a one-word sentiment label to valence and arousal.
// Anything unrecognized is neutral.
func ParseSentiment(label string) conversation.Sentiment {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "NEGATIVE"):
		return sentimentNegative
	case strings.Contains(upper, "POSITIVE"):
		return sentimentPositive
	default:
		return sentimentNeutral
	}
}

func (o *Orchestrator) analyzeSentiment(ctx context.Context, t *turn) conversation.Sentiment {
	res := o.generate(ctx, t, router.TaskSentimentAnalysis, prompt.Context{Message: t.text})
	if !res.OK {
		t.log.Warn("sentiment analysis failed, assuming neutral", slog.String("kind", string(res.Kind)))
		return sentimentNeutral
	}
	return ParseSentiment(res.Text)
}

// conditionHints maps word stems to condition labels, checked in order.
var conditionHints = []struct {
	condition string
	stems     []string
}{
	{"anxiety", []string{"anxious", "anxiety", "panic", "worry", "worried", "nervous"}},
	{"depression", []string{"depress", "sad", "hopeless", "empty", "down"}},
	{"stress", []string{"stress", "overwhelm", "burnout", "burned out", "burnt out"}},
	{"trauma", []string{"trauma", "ptsd", "flashback", "nightmare"}},
	{"sleep", []string{"sleep", "insomnia"}},
}

// DetectConditions returns the condition labels hinted at by text.
func DetectConditions(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, hint := range conditionHints {
		for _, stem := range hint.stems {
			if strings.Contains(lower, stem) {
				found = append(found, hint.condition)
				break
			}
		}
	}
	return found
}
