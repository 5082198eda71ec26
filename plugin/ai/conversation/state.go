// Package conversation defines the per-session conversation state that flows
// through the triage state machine.
package conversation

import (
	"time"

	"github.com/hrygo/acutie/plugin/ai/assessment"
)

// Phase is the current node of the conversation state machine.
type Phase string

const (
	PhaseClassifyIntent      Phase = "classify_intent"
	PhaseCrisisCheck         Phase = "crisis_check"
	PhaseGreeting            Phase = "greeting"
	PhaseCollectDemographics Phase = "collect_demographics"
	PhaseAssessment          Phase = "assessment"
	PhaseDiagnosis           Phase = "diagnosis"
	PhaseCompleted           Phase = "completed"
	PhaseError               Phase = "error"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// RiskLevel is the assessed self-harm risk; ordered low < moderate < high < crisis.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCrisis   RiskLevel = "crisis"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskModerate: 1,
	RiskHigh:     2,
	RiskCrisis:   3,
}

// Rank returns the ordinal of the risk level; unknown values rank as low.
func (r RiskLevel) Rank() int {
	return riskRank[r]
}

// Demographics is collected at most once per session.
type Demographics struct {
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Sentiment is the affect of the opening message.
type Sentiment struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// State is the conversation state of one session.
// Only the orchestrator mutates it, and only on a private clone.
type State struct {
	SessionID             string                          `json:"session_id"`
	Phase                 Phase                           `json:"phase"`
	Messages              []Message                       `json:"messages"`
	QuestionsAsked        int                             `json:"questions_asked"`
	DimensionsAnswered    []assessment.Dimension          `json:"dimensions_answered"`
	Answers               map[assessment.Dimension]string `json:"answers"`
	LastAskedDimension    assessment.Dimension            `json:"last_asked_dimension,omitempty"`
	ConditionHypothesis   []string                        `json:"condition_hypothesis"`
	Demographics          *Demographics                   `json:"demographics,omitempty"`
	DemographicsRequested bool                            `json:"demographics_requested"`
	Sentiment             *Sentiment                      `json:"sentiment,omitempty"`
	RiskLevel             RiskLevel                       `json:"risk_level"`
	CrisisConfidence      float64                         `json:"crisis_confidence"`
	OffTopicCount         int                             `json:"off_topic_count"`
	Introduced            bool                            `json:"introduced"`
	CreatedAt             time.Time                       `json:"created_at"`
	LastUpdated           time.Time                       `json:"last_updated"`
}

// New creates the default state of a session that has not spoken yet.
func New(sessionID string) *State {
	now := time.Now()
	return &State{
		SessionID:   sessionID,
		Phase:       PhaseClassifyIntent,
		Messages:    []Message{},
		Answers:     make(map[assessment.Dimension]string),
		RiskLevel:   RiskLow,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.DimensionsAnswered = append([]assessment.Dimension(nil), s.DimensionsAnswered...)
	c.ConditionHypothesis = append([]string(nil), s.ConditionHypothesis...)
	c.Answers = make(map[assessment.Dimension]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	if s.Demographics != nil {
		d := *s.Demographics
		c.Demographics = &d
	}
	if s.Sentiment != nil {
		v := *s.Sentiment
		c.Sentiment = &v
	}
	return &c
}

// AppendUser appends a user message to the transcript.
func (s *State) AppendUser(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Text: text})
}

// AppendAssistant appends an assistant message to the transcript.
func (s *State) AppendAssistant(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Text: text})
}

// FirstUserText returns the opening user message, or "".
func (s *State) FirstUserText() string {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return m.Text
		}
	}
	return ""
}

// Recent returns up to n trailing messages.
func (s *State) Recent(n int) []Message {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// MarkAnswered normalizes name and records value for it.
// Names that do not resolve to a canonical dimension are ignored, so
// DimensionsAnswered stays within the eight canonical kinds. Last write wins.
func (s *State) MarkAnswered(name string, value string) bool {
	d := assessment.Normalize(name)
	if !d.IsCanonical() {
		return false
	}
	if s.Answers == nil {
		s.Answers = make(map[assessment.Dimension]string)
	}
	s.Answers[d] = value
	for _, existing := range s.DimensionsAnswered {
		if existing == d {
			return true
		}
	}
	s.DimensionsAnswered = append(s.DimensionsAnswered, d)
	return true
}

// HasAnswered reports whether d has been answered.
func (s *State) HasAnswered(d assessment.Dimension) bool {
	_, ok := s.Answers[d]
	return ok
}

// RaiseRisk sets the risk level if it is higher than the current one.
func (s *State) RaiseRisk(level RiskLevel) {
	if level.Rank() > s.RiskLevel.Rank() {
		s.RiskLevel = level
	}
}

// AddCondition appends a condition hypothesis once.
func (s *State) AddCondition(condition string) {
	for _, c := range s.ConditionHypothesis {
		if c == condition {
			return
		}
	}
	s.ConditionHypothesis = append(s.ConditionHypothesis, condition)
}

// IsTerminal reports whether the session accepts no further interview turns.
func (s *State) IsTerminal() bool {
	return s.Phase == PhaseCompleted || s.RiskLevel == RiskCrisis
}

// Snapshot returns the tracker view of the state.
func (s *State) Snapshot() assessment.Snapshot {
	return assessment.Snapshot{
		QuestionsAsked: s.QuestionsAsked,
		Answered:       append([]assessment.Dimension(nil), s.DimensionsAnswered...),
	}
}
