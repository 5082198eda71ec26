package assessment

import (
	"github.com/samber/lo"
)

const (
	// MinQuestions is the floor below which an assessment never triggers.
	MinQuestions = 8
	// MaxQuestions is the ceiling at which an assessment always triggers.
	MaxQuestions = 13
)

// Reason explains a trigger decision.
type Reason string

const (
	ReasonMaxQuestions          Reason = "max_questions_reached"
	ReasonInsufficientQuestions Reason = "insufficient_questions"
	ReasonCriteriaMet           Reason = "criteria_met"
	ReasonContinueGathering     Reason = "continue_gathering"
)

// Snapshot is the slice of conversation state the tracker decides on.
type Snapshot struct {
	QuestionsAsked int
	Answered       []Dimension
}

// Coverage counts answered dimensions per category.
type Coverage struct {
	Core     int
	Impact   int
	Context  int
	Total    int
	Complete bool
	Missing  []Dimension
}

// Decision is the result of ShouldTrigger.
type Decision struct {
	Trigger bool
	Reason  Reason
	Missing []Dimension
}

// Status is the full tracker view of a snapshot, logged per turn.
type Status struct {
	Decision       Decision
	QuestionsAsked int
	Coverage       Coverage
	Readiness      float64
	Next           Dimension
}

// Tracker decides between continuing the interview and emitting a diagnosis.
// It is stateless and safe for concurrent use.
type Tracker struct {
	minQuestions int
	maxQuestions int
}

// NewTracker creates a tracker with the standard question limits.
func NewTracker() *Tracker {
	return &Tracker{minQuestions: MinQuestions, maxQuestions: MaxQuestions}
}

// ShouldTrigger reports whether enough has been gathered for a diagnosis.
func (t *Tracker) ShouldTrigger(s Snapshot) Decision {
	if s.QuestionsAsked >= t.maxQuestions {
		return Decision{Trigger: true, Reason: ReasonMaxQuestions}
	}

	cov := t.Coverage(s.Answered)
	if s.QuestionsAsked < t.minQuestions {
		return Decision{Reason: ReasonInsufficientQuestions, Missing: cov.Missing}
	}
	if cov.Complete {
		return Decision{Trigger: true, Reason: ReasonCriteriaMet}
	}
	return Decision{Reason: ReasonContinueGathering, Missing: cov.Missing}
}

// Coverage normalizes answered names and counts them per category.
// Complete requires all core, both impact and at least one context dimension.
func (t *Tracker) Coverage(answered []Dimension) Coverage {
	set := normalizedSet(answered)
	has := func(d Dimension) bool { return set[d] }

	cov := Coverage{
		Core:    lo.CountBy(CoreDimensions, has),
		Impact:  lo.CountBy(ImpactDimensions, has),
		Context: lo.CountBy(ContextDimensions, has),
		Total:   len(set),
	}
	cov.Complete = cov.Core >= len(CoreDimensions) && cov.Impact >= 2 && cov.Context >= 1

	missingCore := lo.Reject(CoreDimensions, func(d Dimension, _ int) bool { return has(d) })
	missingImpact := lo.Reject(ImpactDimensions, func(d Dimension, _ int) bool { return has(d) })
	cov.Missing = append(cov.Missing, missingCore...)
	cov.Missing = append(cov.Missing, missingImpact...)
	if cov.Context < 1 {
		cov.Missing = append(cov.Missing, ContextDimensions[0])
	}
	return cov
}

// NextDimension returns the highest-priority unanswered dimension:
// core before impact before context. With everything answered it returns support_system.
func (t *Tracker) NextDimension(s Snapshot) Dimension {
	set := normalizedSet(s.Answered)
	if d, ok := lo.Find(All(), func(d Dimension) bool { return !set[d] }); ok {
		return d
	}
	return DimensionSupportSystem
}

// ReadinessScore is an informational progress value in [0,1]:
// 40% question progress toward MinQuestions, 60% weighted coverage.
func (t *Tracker) ReadinessScore(s Snapshot) float64 {
	questions := min(float64(s.QuestionsAsked)/float64(t.minQuestions), 1.0) * 0.4

	cov := t.Coverage(s.Answered)
	core := float64(cov.Core) / float64(len(CoreDimensions)) * 0.3
	impact := float64(cov.Impact) / float64(len(ImpactDimensions)) * 0.2
	context := min(float64(cov.Context), 1.0) * 0.1

	return min(questions+core+impact+context, 1.0)
}

// Status returns decision, coverage, readiness and next dimension together.
func (t *Tracker) Status(s Snapshot) Status {
	st := Status{
		Decision:       t.ShouldTrigger(s),
		QuestionsAsked: s.QuestionsAsked,
		Coverage:       t.Coverage(s.Answered),
		Readiness:      t.ReadinessScore(s),
	}
	if !st.Decision.Trigger {
		st.Next = t.NextDimension(s)
	}
	return st
}

func normalizedSet(answered []Dimension) map[Dimension]bool {
	set := make(map[Dimension]bool, len(answered))
	for _, d := range answered {
		set[Normalize(string(d))] = true
	}
	return set
}
