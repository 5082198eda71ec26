package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/hrygo/acutie/internal/observability"
	"github.com/hrygo/acutie/plugin/ai"
	"github.com/hrygo/acutie/plugin/ai/timeout"
)

// DefaultThreshold is the minimum similarity accepted as a match.
const DefaultThreshold = 0.3

// Classifier implements IntentClassifier over an embedding service.
// Exemplar vectors are embedded once on first use and reused afterwards;
// a failed warm-up is retried on the next call.
type Classifier struct {
	embedder  ai.EmbeddingService
	threshold float64
	exemplars []Exemplar

	mu      sync.Mutex
	vectors [][]float32
}

// Config contains the configuration for the classifier.
type Config struct {
	Embedder  ai.EmbeddingService
	Threshold float64    // default: DefaultThreshold
	Exemplars []Exemplar // default: DefaultExemplars()
}

// NewClassifier creates a new classifier.
func NewClassifier(cfg Config) *Classifier {
	c := &Classifier{
		embedder:  cfg.Embedder,
		threshold: cfg.Threshold,
		exemplars: cfg.Exemplars,
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThreshold
	}
	if len(c.exemplars) == 0 {
		c.exemplars = DefaultExemplars()
	}
	return c
}

// Classify returns the intent of the closest exemplar when it clears the threshold.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	start := time.Now()
	text = strings.TrimSpace(text)
	if text == "" || c.embedder == nil {
		return Result{Intent: IntentUnclear}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout.EmbeddingTimeout)
	defer cancel()

	vectors, err := c.exemplarVectors(ctx)
	if err != nil {
		slog.Warn("intent exemplars unavailable, classifying as unclear", "error", err)
		return Result{Intent: IntentUnclear}
	}

	query, err := c.embedder.Embed(ctx, text)
	if err != nil {
		slog.Warn("intent embedding failed, classifying as unclear", "error", err)
		return Result{Intent: IntentUnclear}
	}

	best, bestScore := -1, 0.0
	for i, v := range vectors {
		if score := CosineSimilarity(query, v); score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 || bestScore < c.threshold {
		slog.Debug("no intent match found",
			"input", observability.Truncate(text, 50),
			"best_score", bestScore,
			"latency_ms", time.Since(start).Milliseconds())
		return Result{Intent: IntentUnclear, Confidence: bestScore}
	}

	res := Result{
		Intent:     c.exemplars[best].Intent,
		Confidence: bestScore,
		Exemplar:   c.exemplars[best].Utterance,
	}
	slog.Debug("intent classified",
		"input", observability.Truncate(text, 50),
		"intent", res.Intent,
		"confidence", res.Confidence,
		"latency_ms", time.Since(start).Milliseconds())
	return res
}

func (c *Classifier) exemplarVectors(ctx context.Context) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vectors != nil {
		return c.vectors, nil
	}

	utterances := lo.Map(c.exemplars, func(e Exemplar, _ int) string { return e.Utterance })
	vectors, err := c.embedder.EmbedBatch(ctx, utterances)
	if err != nil {
		return nil, fmt.Errorf("embed exemplars: %w", err)
	}
	if len(vectors) != len(utterances) {
		return nil, fmt.Errorf("embed exemplars: got %d vectors for %d utterances", len(vectors), len(utterances))
	}
	c.vectors = vectors
	return vectors, nil
}


// Ensure Classifier implements IntentClassifier
var _ IntentClassifier = (*Classifier)(nil)
