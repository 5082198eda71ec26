package crisis

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/acutie/internal/observability"
	"github.com/hrygo/acutie/plugin/ai/gateway"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
	"github.com/hrygo/acutie/plugin/ai/timeout"
)

// Component score sources.
const (
	SourceKeyword   = "keyword"
	SourcePrimary   = "model_primary"
	SourceSecondary = "model_secondary"
)

const (
	// Threshold is the final score at or above which a message is a crisis.
	Threshold = 0.6

	weightPrimary   = 0.4
	weightSecondary = 0.4
	weightKeyword   = 0.2
)

// Assessment is the ensemble decision for one message.
type Assessment struct {
	IsCrisis        bool
	Confidence      float64
	ComponentScores map[string]float64
	KeywordMatched  bool
	// Degraded is set when neither model produced a usable score.
	Degraded bool
	Latency  time.Duration
}

// Detector screens text for crisis risk. Implementations never fail.
type Detector interface {
	Prefilter(text string) bool
	Detect(ctx context.Context, text string) Assessment
}

// Ensemble combines the keyword pre-filter with two concurrent model scores.
type Ensemble struct {
	keywords *KeywordMatcher
	invoker  gateway.Invoker
	router   router.RouterService
	prompts  *prompt.Registry
	timeout  time.Duration
}

// Config contains the configuration for the ensemble.
type Config struct {
	Invoker gateway.Invoker
	Router  router.RouterService
	// Prompts renders the scoring prompts. Default: prompt.NewRegistry().
	Prompts *prompt.Registry
	// Keywords overrides the built-in matcher.
	Keywords *KeywordMatcher
	// CallTimeout bounds each model call including retries. Default: timeout.CrisisCallTimeout.
	CallTimeout time.Duration
}

// NewEnsemble creates a new ensemble.
func NewEnsemble(cfg Config) *Ensemble {
	e := &Ensemble{
		keywords: cfg.Keywords,
		invoker:  cfg.Invoker,
		router:   cfg.Router,
		prompts:  cfg.Prompts,
		timeout:  cfg.CallTimeout,
	}
	if e.prompts == nil {
		e.prompts = prompt.NewRegistry()
	}
	if e.keywords == nil {
		e.keywords = NewKeywordMatcher()
	}
	if e.timeout <= 0 {
		e.timeout = timeout.CrisisCallTimeout
	}
	return e
}

// Prefilter reports whether text contains a crisis term.
func (e *Ensemble) Prefilter(text string) bool {
	_, ok := e.keywords.Match(text)
	return ok
}

// Detect scores text as 0.4·primary + 0.4·secondary + 0.2·keyword.
// Both model calls run concurrently; a failed or unparseable call scores 0.
func (e *Ensemble) Detect(ctx context.Context, text string) Assessment {
	start := time.Now()
	keyword, matched := e.keywords.Match(text)
	keywordScore := 0.0
	if matched {
		keywordScore = 1.0
	}

	var (
		primary, secondary     float64
		primaryOK, secondaryOK bool
	)
	var g errgroup.Group
	g.Go(func() error {
		primary, primaryOK = e.score(ctx, router.TaskCrisisDetectionPrimary, text)
		return nil
	})
	g.Go(func() error {
		secondary, secondaryOK = e.score(ctx, router.TaskCrisisDetectionSecondary, text)
		return nil
	})
	_ = g.Wait()

	final := weightPrimary*primary + weightSecondary*secondary + weightKeyword*keywordScore
	a := Assessment{
		IsCrisis:   final >= Threshold,
		Confidence: final,
		ComponentScores: map[string]float64{
			SourceKeyword:   keywordScore,
			SourcePrimary:   primary,
			SourceSecondary: secondary,
		},
		KeywordMatched: matched,
		Degraded:       !primaryOK && !secondaryOK,
		Latency:        time.Since(start),
	}

	level := slog.LevelDebug
	if a.IsCrisis || a.Degraded {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "crisis ensemble decision",
		"is_crisis", a.IsCrisis,
		"confidence", a.Confidence,
		"keyword", keyword,
		"primary", primary,
		"secondary", secondary,
		"degraded", a.Degraded,
		"latency_ms", a.Latency.Milliseconds())
	return a
}

func (e *Ensemble) score(ctx context.Context, task router.TaskType, text string) (float64, bool) {
	if e.invoker == nil || e.router == nil {
		return 0, false
	}
	body, err := e.prompts.Build(task, prompt.Context{Message: text})
	if err != nil {
		slog.Error("crisis prompt unavailable", "task", task, "error", err)
		return 0, false
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res := e.invoker.Invoke(callCtx, e.router.ConfigFor(task), body)
	if !res.OK {
		return 0, false
	}
	score, ok := ParseScore(res.Text)
	if !ok {
		slog.Warn("could not parse crisis score", "task", task, "response", observability.Truncate(res.Text, 50))
	}
	return score, ok
}

var (
	scorePattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
	// scaleText matches range and denominator phrases such as "0 to 1", "out of 1" and "/1".
	scaleText = regexp.MustCompile(`(?i)\d*\.?\d+\s*(?:to|-)\s*\d*\.?\d+|out\s+of\s+\d*\.?\d+|/\s*\d*\.?\d+`)
)

// ParseScore reads a model risk score and clamps it to [0,1]. A bare number
// is parsed as is; otherwise the first number outside any scale phrase is used.
func ParseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		m := scorePattern.FindString(scaleText.ReplaceAllString(s, " "))
		if m == "" {
			return 0, false
		}
		if v, err = strconv.ParseFloat(m, 64); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return min(max(v, 0), 1), true
}

// Ensure Ensemble implements Detector
var _ Detector = (*Ensemble)(nil)
