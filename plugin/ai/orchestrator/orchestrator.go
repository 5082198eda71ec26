// Package orchestrator runs one user turn through the triage state machine:
// crisis screening, intent routing, node execution and state persistence.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hrygo/acutie/internal/observability"
	"github.com/hrygo/acutie/plugin/ai/assessment"
	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/crisis"
	"github.com/hrygo/acutie/plugin/ai/gateway"
	"github.com/hrygo/acutie/plugin/ai/intent"
	"github.com/hrygo/acutie/plugin/ai/metrics"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
	"github.com/hrygo/acutie/plugin/ai/session"
)

// Route names the node a turn was handled by.
type Route string

const (
	RouteCrisisPrefilter Route = "crisis_prefilter"
	RouteCrisis          Route = "crisis"
	RouteOffTopic        Route = "off_topic"
	RouteGreeting        Route = "greeting"
	RouteAssessment      Route = "assessment"
	RouteDiagnosis       Route = "diagnosis"
	RouteCompleted       Route = "completed"
	RouteError           Route = "error"
)

// maxOffTopic is the number of off-topic messages after which the session ends.
const maxOffTopic = 3

// Observer receives per-turn measurements. *metrics.Recorder implements it.
type Observer interface {
	TurnStarted()
	ObserveTurn(route string, latency time.Duration, success bool)
	ObserveCrisis(outcome string, confidence float64)
	ObserveSaveFailure()
}

// Config contains the collaborators of the orchestrator.
type Config struct {
	Memory     session.MemoryService
	Classifier intent.IntentClassifier
	Crisis     crisis.Detector
	Invoker    gateway.Invoker
	Router     router.RouterService
	// Prompts renders node prompts. Default: prompt.NewRegistry().
	Prompts *prompt.Registry
	// Locks serializes turns per session. Default: a private LockManager.
	Locks *session.LockManager
	// Tracker decides when to diagnose. Default: assessment.NewTracker().
	Tracker  *assessment.Tracker
	Observer Observer
	Logger   *slog.Logger
}

// Orchestrator processes user messages.
type Orchestrator struct {
	memory     session.MemoryService
	classifier intent.IntentClassifier
	crisis     crisis.Detector
	invoker    gateway.Invoker
	router     router.RouterService
	prompts    *prompt.Registry
	locks      *session.LockManager
	tracker    *assessment.Tracker
	observer   Observer
	logger     *slog.Logger
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Memory == nil {
		return nil, fmt.Errorf("orchestrator: memory service is required")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("orchestrator: intent classifier is required")
	}
	if cfg.Crisis == nil {
		return nil, fmt.Errorf("orchestrator: crisis detector is required")
	}
	if cfg.Invoker == nil || cfg.Router == nil {
		return nil, fmt.Errorf("orchestrator: model invoker and router are required")
	}
	o := &Orchestrator{
		memory:     cfg.Memory,
		classifier: cfg.Classifier,
		crisis:     cfg.Crisis,
		invoker:    cfg.Invoker,
		router:     cfg.Router,
		prompts:    cfg.Prompts,
		locks:      cfg.Locks,
		tracker:    cfg.Tracker,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
	if o.prompts == nil {
		o.prompts = prompt.NewRegistry()
	}
	if o.locks == nil {
		o.locks = session.NewLockManager()
	}
	if o.tracker == nil {
		o.tracker = assessment.NewTracker()
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, nil
}

// turn is the working set of one ProcessMessage call.
type turn struct {
	log   *observability.TurnContext
	text  string
	state *conversation.State

	// crisisChecked is set once the ensemble has run in this turn.
	crisisChecked bool
	assessment    crisis.Assessment
	intent        intent.Result
}

// ProcessMessage handles one user message and returns the assistant reply.
// Turns for the same session are serialized. Failures surface as fixed
// user-safe texts; the reply is never empty.
func (o *Orchestrator) ProcessMessage(ctx context.Context, sessionID, text string) string {
	tc := observability.NewTurnContext(o.logger, sessionID)
	ctx = observability.WithTurnContext(ctx, tc)
	o.observer.TurnStarted()

	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		tc.Warn("rejected empty session id or message")
		o.finish(tc, RouteError, prompt.GenericApology, false)
		return prompt.GenericApology
	}

	unlock, err := o.locks.Lock(ctx, sessionID)
	if err != nil {
		tc.Error("failed to acquire session lock", err)
		o.finish(tc, RouteError, prompt.GenericApology, false)
		return prompt.GenericApology
	}
	defer unlock()

	tc.Debug("processing message", slog.Int(observability.LogFieldMessageLen, len(text)))
	t := &turn{log: tc, text: text}

	// Keyword pre-filter runs before anything slower.
	if o.crisis.Prefilter(text) {
		t.assessment = o.crisis.Detect(ctx, text)
		t.crisisChecked = true
		o.observeCrisis(t.assessment)
		if t.assessment.IsCrisis || t.assessment.Degraded {
			reply := o.handleCrisisShortCircuit(ctx, t)
			o.finish(tc, RouteCrisisPrefilter, reply, true)
			return reply
		}
	}

	loaded, source := o.memory.Load(ctx, sessionID)
	tc.Debug("session loaded", slog.String("source", string(source)), slog.String("phase", string(loaded.Phase)))
	t.state = loaded.Clone()
	t.state.AppendUser(text)

	if t.state.IsTerminal() {
		reply := prompt.SessionCompleted
		if t.state.RiskLevel == conversation.RiskCrisis {
			reply = prompt.CrisisResources
		}
		t.state.AppendAssistant(reply)
		o.save(ctx, t, 2)
		o.finish(tc, RouteCompleted, reply, true)
		return reply
	}

	t.intent = o.classifier.Classify(ctx, text)
	route := o.route(t)
	tc.Info("turn routed",
		slog.String("intent", string(t.intent.Intent)),
		slog.Float64("intent_confidence", t.intent.Confidence),
		slog.String(observability.LogFieldRoute, string(route)),
		slog.Int("questions_asked", t.state.QuestionsAsked))

	reply, route, err := o.runNode(ctx, t, route)
	if err != nil {
		// The clone is discarded; nothing from this turn is persisted.
		tc.Error("node failed, state rolled back", err, slog.String(observability.LogFieldRoute, string(route)))
		o.finish(tc, RouteError, prompt.GenericApology, false)
		return prompt.GenericApology
	}

	o.logStatus(t)
	o.save(ctx, t, 2)
	o.finish(tc, route, reply, true)
	return reply
}

// route picks the node for a loaded, non-terminal state, in priority order.
func (o *Orchestrator) route(t *turn) Route {
	st := t.state
	switch {
	case t.intent.Intent == intent.IntentCrisis:
		return RouteCrisis
	case t.intent.Intent == intent.IntentOffTopic:
		return RouteOffTopic
	case st.QuestionsAsked == 0, t.intent.Intent == intent.IntentFirstMessage && !st.Introduced:
		return RouteGreeting
	case o.tracker.ShouldTrigger(st.Snapshot()).Trigger:
		return RouteDiagnosis
	default:
		return RouteAssessment
	}
}

// runNode executes a node on t.state. A panic inside the node is recovered
// and reported as an error so the caller can discard the clone.
func (o *Orchestrator) runNode(ctx context.Context, t *turn, route Route) (reply string, final Route, err error) {
	final = route
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s node: %v", final, r)
			t.log.Debug("node panic stack", slog.String("stack", string(debug.Stack())))
		}
	}()

	messages := len(t.state.Messages)
	switch route {
	case RouteCrisis:
		reply = o.crisisNode(ctx, t)
	case RouteOffTopic:
		reply = o.offTopicNode(t)
	case RouteGreeting:
		reply = o.greetingNode(ctx, t)
	case RouteDiagnosis:
		reply = o.diagnosisNode(ctx, t)
	default:
		reply, final = o.assessmentNode(ctx, t)
	}

	if len(t.state.Messages) != messages+1 {
		return "", final, fmt.Errorf("%s node appended %d assistant messages", final, len(t.state.Messages)-messages)
	}
	return reply, final, nil
}

// handleCrisisShortCircuit ends the session with crisis resources before
// the classifier runs.
func (o *Orchestrator) handleCrisisShortCircuit(ctx context.Context, t *turn) string {
	loaded, _ := o.memory.Load(ctx, t.log.SessionID)
	t.state = loaded.Clone()
	t.state.AppendUser(t.text)
	if !t.assessment.IsCrisis {
		t.log.Warn("crisis models unavailable, emitting resources on keyword match",
			slog.Float64("confidence", t.assessment.Confidence))
	}
	reply := o.escalate(t)
	o.save(ctx, t, 2)
	return reply
}

// escalate marks the session as crisis and appends the resources message.
func (o *Orchestrator) escalate(t *turn) string {
	st := t.state
	st.RaiseRisk(conversation.RiskCrisis)
	st.CrisisConfidence = max(st.CrisisConfidence, t.assessment.Confidence)
	st.Phase = conversation.PhaseCompleted
	st.AppendAssistant(prompt.CrisisResources)
	return prompt.CrisisResources
}

// save persists the working state. A failure is logged as a data-loss risk
// and does not change the reply.
func (o *Orchestrator) save(ctx context.Context, t *turn, appended int) {
	msgs := t.state.Messages
	if appended > len(msgs) {
		appended = len(msgs)
	}
	if err := o.memory.Save(ctx, t.state, msgs[len(msgs)-appended:]...); err != nil {
		o.observer.ObserveSaveFailure()
		t.log.Error("failed to persist turn; next turn may not see this progress", err,
			slog.String("phase", string(t.state.Phase)),
			slog.Int("questions_asked", t.state.QuestionsAsked))
	}
}

func (o *Orchestrator) observeCrisis(a crisis.Assessment) {
	outcome := metrics.CrisisClear
	switch {
	case a.IsCrisis:
		outcome = metrics.CrisisDetected
	case a.Degraded && a.KeywordMatched:
		outcome = metrics.CrisisKeywordOnly
	}
	o.observer.ObserveCrisis(outcome, a.Confidence)
}

func (o *Orchestrator) logStatus(t *turn) {
	status := o.tracker.Status(t.state.Snapshot())
	t.log.Debug("assessment status",
		slog.String("phase", string(t.state.Phase)),
		slog.Bool("trigger", status.Decision.Trigger),
		slog.String("reason", string(status.Decision.Reason)),
		slog.Int("questions_asked", status.QuestionsAsked),
		slog.Int("dimensions", status.Coverage.Total),
		slog.Float64("readiness", status.Readiness),
		slog.String("next_dimension", string(status.Next)))
}

func (o *Orchestrator) finish(tc *observability.TurnContext, route Route, reply string, success bool) {
	tc.Finish(string(route), len(reply))
	o.observer.ObserveTurn(string(route), tc.Duration(), success)
}

type nopObserver struct{}

func (nopObserver) TurnStarted()                            {}
func (nopObserver) ObserveTurn(string, time.Duration, bool) {}
func (nopObserver) ObserveCrisis(string, float64)           {}
func (nopObserver) ObserveSaveFailure()                     {}

// Ensure Recorder implements Observer
var _ Observer = (*metrics.Recorder)(nil)
