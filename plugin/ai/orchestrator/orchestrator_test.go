package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/acutie/plugin/ai/assessment"
	"github.com/hrygo/acutie/plugin/ai/cache"
	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/crisis"
	"github.com/hrygo/acutie/plugin/ai/gateway"
	"github.com/hrygo/acutie/plugin/ai/intent"
	"github.com/hrygo/acutie/plugin/ai/metrics"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
	"github.com/hrygo/acutie/plugin/ai/session"
)

// scriptedClassifier returns a fixed intent per text and a default otherwise.
type scriptedClassifier struct {
	byText   map[string]intent.Intent
	fallback intent.Intent
}

func (c *scriptedClassifier) Classify(_ context.Context, text string) intent.Result {
	if in, ok := c.byText[text]; ok {
		return intent.Result{Intent: in, Confidence: 0.9}
	}
	return intent.Result{Intent: c.fallback, Confidence: 0.5}
}

type countingObserver struct {
	mu           sync.Mutex
	turns        int
	routes       []string
	crisis       []string
	saveFailures int
}

func (o *countingObserver) TurnStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.turns++
}

func (o *countingObserver) ObserveTurn(route string, _ time.Duration, _ bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
}

func (o *countingObserver) ObserveCrisis(outcome string, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.crisis = append(o.crisis, outcome)
}

func (o *countingObserver) ObserveSaveFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saveFailures++
}

type harness struct {
	orch     *Orchestrator
	invoker  *gateway.MockInvoker
	durable  *session.MockDurableStore
	cache    *cache.MockCacheService
	memory   *session.Manager
	observer *countingObserver
}

func newHarness(t *testing.T, classifier intent.IntentClassifier) *harness {
	t.Helper()
	h := &harness{
		invoker:  gateway.NewMockInvoker(),
		durable:  session.NewMockDurableStore(),
		cache:    cache.NewMockCacheService(),
		observer: &countingObserver{},
	}
	h.memory = session.NewManager(session.Config{Cache: h.cache, Durable: h.durable})
	rt := router.NewMockRouterService()

	orch, err := New(Config{
		Memory:     h.memory,
		Classifier: classifier,
		Crisis:     crisis.NewEnsemble(crisis.Config{Invoker: h.invoker, Router: rt, CallTimeout: time.Second}),
		Invoker:    h.invoker,
		Router:     rt,
		Observer:   h.observer,
	})
	require.NoError(t, err)
	h.orch = orch
	return h
}

func (h *harness) state(t *testing.T, id string) *conversation.State {
	t.Helper()
	st, _ := h.memory.Load(context.Background(), id)
	require.NotNil(t, st)
	return st
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Memory: session.NewManager(session.Config{Durable: session.NewMockDurableStore()})})
	assert.Error(t, err)
}

func TestProcessMessage_CrisisShortCircuit(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})
	h.invoker.
		Queue(router.TaskCrisisDetectionPrimary, gateway.MockReply{Text: "0.95"}).
		Queue(router.TaskCrisisDetectionSecondary, gateway.MockReply{Text: "0.9"})

	reply := h.orch.ProcessMessage(context.Background(), "s1", "I want to end my life tonight")

	assert.Equal(t, prompt.CrisisResources, reply)
	st := h.state(t, "s1")
	assert.Equal(t, conversation.PhaseCompleted, st.Phase)
	assert.Equal(t, conversation.RiskCrisis, st.RiskLevel)
	assert.Zero(t, st.QuestionsAsked)
	assert.Empty(t, st.DimensionsAnswered)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, conversation.RoleUser, st.Messages[0].Role)
	assert.Equal(t, prompt.CrisisResources, st.Messages[1].Text)

	// The tracker and every generation task are bypassed.
	for _, call := range h.invoker.Calls() {
		assert.Contains(t, []router.TaskType{router.TaskCrisisDetectionPrimary, router.TaskCrisisDetectionSecondary}, call.Task)
	}
	assert.Equal(t, []string{metrics.CrisisDetected}, h.observer.crisis)
	assert.Equal(t, []string{string(RouteCrisisPrefilter)}, h.observer.routes)
}

func TestProcessMessage_KeywordOnlyWhenModelsFail(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})
	// No crisis scripts: both model calls fail and the ensemble is degraded.

	reply := h.orch.ProcessMessage(context.Background(), "s1", "I keep thinking about suicide")

	assert.Equal(t, prompt.CrisisResources, reply)
	st := h.state(t, "s1")
	assert.Equal(t, conversation.PhaseCompleted, st.Phase)
	assert.Equal(t, conversation.RiskCrisis, st.RiskLevel)
	assert.InDelta(t, 0.2, st.CrisisConfidence, 1e-9)
	assert.Equal(t, []string{metrics.CrisisKeywordOnly}, h.observer.crisis)
}

func TestProcessMessage_PrefilterClearedContinues(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentFirstMessage})
	h.invoker.
		Queue(router.TaskCrisisDetectionPrimary, gateway.MockReply{Text: "0.1"}).
		Queue(router.TaskCrisisDetectionSecondary, gateway.MockReply{Text: "0.0"}).
		Always(router.TaskSentimentAnalysis, gateway.MockReply{Text: "NEUTRAL"}).
		Always(router.TaskGreetingNeutral, gateway.MockReply{Text: "Hello, I'm Acutie. How long has this been going on?"})

	reply := h.orch.ProcessMessage(context.Background(), "s1", "I would never hurt myself, I'm just stressed")

	assert.Equal(t, "Hello, I'm Acutie. How long has this been going on?", reply)
	assert.Equal(t, 1, h.invoker.CallCount(router.TaskCrisisDetectionPrimary))
	assert.Equal(t, []string{metrics.CrisisClear}, h.observer.crisis)

	st := h.state(t, "s1")
	assert.Equal(t, conversation.RiskLow, st.RiskLevel)
	assert.Equal(t, []string{"stress"}, st.ConditionHypothesis)
}

func TestProcessMessage_SemanticCrisisIntent(t *testing.T) {
	text := "I've given away my things and said goodbye to everyone"
	h := newHarness(t, &scriptedClassifier{
		byText:   map[string]intent.Intent{text: intent.IntentCrisis},
		fallback: intent.IntentAssessmentResponse,
	})
	h.invoker.
		Queue(router.TaskCrisisDetectionPrimary, gateway.MockReply{Text: "0.3"}).
		Queue(router.TaskCrisisDetectionSecondary, gateway.MockReply{Text: "0.2"})

	reply := h.orch.ProcessMessage(context.Background(), "s1", text)

	// The classifier is authoritative on its own.
	assert.Equal(t, prompt.CrisisResources, reply)
	st := h.state(t, "s1")
	assert.Equal(t, conversation.RiskCrisis, st.RiskLevel)
	assert.Equal(t, conversation.PhaseCompleted, st.Phase)
	assert.Equal(t, 1, h.invoker.CallCount(router.TaskCrisisDetectionPrimary))
	assert.Equal(t, []string{string(RouteCrisis)}, h.observer.routes)
}

func TestProcessMessage_OffTopicExhaustion(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentOffTopic})
	ctx := context.Background()

	for i := range 3 {
		reply := h.orch.ProcessMessage(ctx, "s1", fmt.Sprintf("what's the weather like %d", i))
		assert.Equal(t, prompt.OffTopicRedirect, reply)
	}

	st := h.state(t, "s1")
	assert.Equal(t, 3, st.OffTopicCount)
	assert.Equal(t, conversation.PhaseCompleted, st.Phase)
	assert.Len(t, st.Messages, 6)

	assert.Equal(t, prompt.SessionCompleted, h.orch.ProcessMessage(ctx, "s1", "tell me a joke"))
	assert.Equal(t, 3, h.state(t, "s1").OffTopicCount)
}

func TestProcessMessage_FullInterview(t *testing.T) {
	opening := "I've been feeling really anxious lately"
	h := newHarness(t, &scriptedClassifier{
		byText:   map[string]intent.Intent{opening: intent.IntentFirstMessage},
		fallback: intent.IntentAssessmentResponse,
	})
	report := "ASSESSMENT SUMMARY\nPrimary Condition(s) Identified: anxiety"
	h.invoker.
		Always(router.TaskSentimentAnalysis, gateway.MockReply{Text: "NEUTRAL"}).
		Always(router.TaskGreetingNeutral, gateway.MockReply{Text: "Hello, I'm Acutie. How long have you felt this way?"}).
		Always(router.TaskAssessmentQuestion, gateway.MockReply{Text: "Could you tell me a bit more?"}).
		Always(router.TaskDiagnosisAnalysis, gateway.MockReply{Text: `{"primary_conditions":["anxiety"],"severity":{"anxiety":"MODERATE"}}`}).
		Always(router.TaskDiagnosisFormatting, gateway.MockReply{Text: report})
	ctx := context.Background()

	turns := []struct {
		text      string
		dimension assessment.Dimension
	}{
		{opening, ""},
		{"2 weeks", assessment.DimensionDuration},
		{"daily", assessment.DimensionFrequency},
		{"7", assessment.DimensionIntensity},
		{"can't sleep", assessment.DimensionDailyImpact},
		{"work deadlines", assessment.DimensionTriggers},
		{"headaches", assessment.DimensionPhysicalSymptoms},
		{"I go for walks", assessment.DimensionCoping},
	}

	var reply string
	for i, turn := range turns {
		reply = h.orch.ProcessMessage(ctx, "s1", turn.text)
		st := h.state(t, "s1")
		if turn.dimension != "" {
			assert.Equal(t, turn.text, st.Answers[turn.dimension], "turn %d", i+1)
		}
		if i < len(turns)-1 {
			assert.NotEqual(t, conversation.PhaseCompleted, st.Phase, "turn %d", i+1)
			assert.NotEqual(t, report, reply, "turn %d", i+1)
		}
	}

	assert.Equal(t, report, reply)
	st := h.state(t, "s1")
	assert.Equal(t, conversation.PhaseCompleted, st.Phase)
	assert.Equal(t, 8, st.QuestionsAsked)
	assert.Len(t, st.DimensionsAnswered, 7)
	assert.Equal(t, conversation.RiskModerate, st.RiskLevel)
	assert.Equal(t, []string{"anxiety"}, st.ConditionHypothesis)
	assert.Len(t, st.Messages, 2*len(turns))
	assert.Equal(t, 1, h.invoker.CallCount(router.TaskGreetingNeutral))
	assert.Len(t, h.durable.Messages("s1"), 2*len(turns))

	// Diagnosis is terminal.
	assert.Equal(t, prompt.SessionCompleted, h.orch.ProcessMessage(ctx, "s1", "one more thing"))
	assert.Equal(t, 8, h.state(t, "s1").QuestionsAsked)
}

func TestProcessMessage_EmpatheticGreetingAsksDemographicsOnce(t *testing.T) {
	opening := "I feel so hopeless and sad all the time"
	h := newHarness(t, &scriptedClassifier{
		byText:   map[string]intent.Intent{opening: intent.IntentFirstMessage},
		fallback: intent.IntentDemographicResponse,
	})
	h.invoker.Always(router.TaskSentimentAnalysis, gateway.MockReply{Text: "NEGATIVE"})
	ctx := context.Background()

	reply := h.orch.ProcessMessage(ctx, "s1", opening)
	assert.Equal(t, prompt.EmpatheticGreetingFallback, reply)
	st := h.state(t, "s1")
	assert.True(t, st.DemographicsRequested)
	assert.Equal(t, conversation.PhaseCollectDemographics, st.Phase)
	assert.Equal(t, []string{"depression"}, st.ConditionHypothesis)

	reply = h.orch.ProcessMessage(ctx, "s1", "My name is Alex, I'm 34 and non-binary")
	assert.Equal(t, prompt.Question(assessment.DimensionDuration), reply)
	st = h.state(t, "s1")
	require.NotNil(t, st.Demographics)
	assert.Equal(t, conversation.Demographics{Name: "Alex", Age: 34, Gender: "non-binary"}, *st.Demographics)
	assert.Equal(t, assessment.DimensionDuration, st.LastAskedDimension)
	assert.Empty(t, st.DimensionsAnswered)
}

func TestProcessMessage_ExtractionRecordsExtraDimensions(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})
	h.invoker.
		Always(router.TaskSentimentAnalysis, gateway.MockReply{Text: "NEUTRAL"}).
		Queue(router.TaskResponseExtraction, gateway.MockReply{Text: "```json\n{\"duration\": \"a month\", \"frequency\": \"most days\", \"mood\": null}\n```"})
	ctx := context.Background()

	h.orch.ProcessMessage(ctx, "s1", "hello")
	h.orch.ProcessMessage(ctx, "s1", "about a month, most days really")

	st := h.state(t, "s1")
	assert.Equal(t, "about a month, most days really", st.Answers[assessment.DimensionDuration])
	assert.Equal(t, "most days", st.Answers[assessment.DimensionFrequency])
	assert.Equal(t, assessment.DimensionIntensity, st.LastAskedDimension)

	// Later extractions fill new dimensions but leave earlier answers alone.
	h.invoker.Queue(router.TaskResponseExtraction, gateway.MockReply{Text: `{"frequency": "rarely", "triggers": "work"}`})
	h.orch.ProcessMessage(ctx, "s1", "maybe a 6, mostly because of work")

	st = h.state(t, "s1")
	assert.Equal(t, "most days", st.Answers[assessment.DimensionFrequency])
	assert.Equal(t, "work", st.Answers[assessment.DimensionTriggers])
	assert.Equal(t, "maybe a 6, mostly because of work", st.Answers[assessment.DimensionIntensity])
}

func TestProcessMessage_NodeFailureRollsBack(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentFirstMessage})
	h.invoker.Queue(router.TaskSentimentAnalysis, gateway.MockReply{Panic: true})
	ctx := context.Background()

	reply := h.orch.ProcessMessage(ctx, "s1", "hello there")

	assert.Equal(t, prompt.GenericApology, reply)
	assert.Zero(t, h.durable.Upserts)
	assert.Empty(t, h.durable.Messages("s1"))
	st := h.state(t, "s1")
	assert.Empty(t, st.Messages)
	assert.Zero(t, st.QuestionsAsked)
	assert.Equal(t, []string{string(RouteError)}, h.observer.routes)

	// The session recovers on the next turn.
	h.invoker.Always(router.TaskSentimentAnalysis, gateway.MockReply{Text: "NEUTRAL"})
	assert.Equal(t, prompt.GreetingFallback, h.orch.ProcessMessage(ctx, "s1", "hello there"))
	assert.Len(t, h.state(t, "s1").Messages, 2)
}

func TestProcessMessage_SaveFailureStillReplies(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentFirstMessage})
	h.durable.UpsertErr = errors.New("database unreachable")

	reply := h.orch.ProcessMessage(context.Background(), "s1", "hi")

	assert.Equal(t, prompt.GreetingFallback, reply)
	assert.Equal(t, 1, h.observer.saveFailures)
	// The cache never runs ahead of the durable store.
	assert.False(t, h.cache.Has(cache.StateKey("s1")))
}

func TestProcessMessage_GatewayFailureUsesScriptedReplies(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})
	h.invoker.
		Always(router.TaskGreetingNeutral, gateway.MockReply{Kind: gateway.KindAuthentication}).
		Always(router.TaskAssessmentQuestion, gateway.MockReply{Kind: gateway.KindRateLimit})
	ctx := context.Background()

	assert.Equal(t, prompt.GreetingFallback, h.orch.ProcessMessage(ctx, "s1", "hi"))
	assert.Equal(t, prompt.Question(assessment.DimensionFrequency), h.orch.ProcessMessage(ctx, "s1", "3 weeks"))
}

func TestProcessMessage_UsesInjectedPrompts(t *testing.T) {
	custom := prompt.NewRegistry()
	require.NoError(t, custom.AddSet("v2", map[router.TaskType]prompt.Template{
		router.TaskSentimentAnalysis:      {User: "v2 sentiment: {{.Message}}"},
		router.TaskCrisisDetectionPrimary: {User: "v2 risk: {{.Message}}"},
	}))
	require.NoError(t, custom.SetVersion("v2"))

	newOrch := func(inv *gateway.MockInvoker, prompts *prompt.Registry) *Orchestrator {
		rt := router.NewMockRouterService()
		o, err := New(Config{
			Memory:     session.NewManager(session.Config{Durable: session.NewMockDurableStore()}),
			Classifier: &scriptedClassifier{fallback: intent.IntentUnclear},
			Crisis:     crisis.NewEnsemble(crisis.Config{Invoker: inv, Router: rt, Prompts: prompts, CallTimeout: time.Second}),
			Invoker:    inv,
			Router:     rt,
			Prompts:    prompts,
		})
		require.NoError(t, err)
		return o
	}
	promptsFor := func(inv *gateway.MockInvoker, task router.TaskType) []string {
		var out []string
		for _, c := range inv.Calls() {
			if c.Task == task {
				out = append(out, c.Prompt)
			}
		}
		return out
	}

	customInv, defaultInv := gateway.NewMockInvoker(), gateway.NewMockInvoker()
	newOrch(customInv, custom).ProcessMessage(context.Background(), "a", "hello")
	newOrch(defaultInv, nil).ProcessMessage(context.Background(), "b", "hello")
	newOrch(customInv, custom).ProcessMessage(context.Background(), "c", "I want to end my life")

	assert.Equal(t, []string{"v2 sentiment: hello"}, promptsFor(customInv, router.TaskSentimentAnalysis))
	assert.Equal(t, []string{"v2 risk: I want to end my life"}, promptsFor(customInv, router.TaskCrisisDetectionPrimary))
	// Tasks missing from v2 still render from the built-in set.
	require.Len(t, promptsFor(customInv, router.TaskCrisisDetectionSecondary), 1)
	assert.NotContains(t, promptsFor(customInv, router.TaskCrisisDetectionSecondary)[0], "v2")

	// A registry switched elsewhere does not leak into other engines.
	got := promptsFor(defaultInv, router.TaskSentimentAnalysis)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "v2 sentiment")
}

func TestProcessMessage_NodeLogsCarryTurnFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inv := gateway.NewMockInvoker()
	rt := router.NewMockRouterService()
	o, err := New(Config{
		Memory:     session.NewManager(session.Config{Durable: session.NewMockDurableStore()}),
		Classifier: &scriptedClassifier{fallback: intent.IntentUnclear},
		Crisis:     crisis.NewEnsemble(crisis.Config{Invoker: inv, Router: rt}),
		Invoker:    inv,
		Router:     rt,
		Logger:     logger,
	})
	require.NoError(t, err)

	// No scripted replies: sentiment and greeting both fall back.
	assert.Equal(t, prompt.GreetingFallback, o.ProcessMessage(context.Background(), "s-log", "hello"))

	seen := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		msg, _ := record["msg"].(string)
		if msg == "using scripted reply" || msg == "sentiment analysis failed, assuming neutral" {
			assert.Equal(t, "s-log", record["session_id"], msg)
			assert.NotEmpty(t, record["turn_id"], msg)
			seen[msg] = true
		}
	}
	assert.True(t, seen["using scripted reply"])
	assert.True(t, seen["sentiment analysis failed, assuming neutral"])
}

func TestProcessMessage_DiagnosisFallback(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})
	h.invoker.Always(router.TaskDiagnosisAnalysis, gateway.MockReply{Kind: gateway.KindContextLength})

	st := conversation.New("s1")
	st.QuestionsAsked = assessment.MaxQuestions
	st.Introduced = true
	st.Phase = conversation.PhaseAssessment
	require.NoError(t, h.memory.Save(context.Background(), st))

	reply := h.orch.ProcessMessage(context.Background(), "s1", "I think that's everything")

	assert.Equal(t, prompt.DiagnosisFallback, reply)
	assert.Equal(t, conversation.PhaseCompleted, h.state(t, "s1").Phase)
	assert.Zero(t, h.invoker.CallCount(router.TaskDiagnosisFormatting))
}

func TestProcessMessage_SerializesSameSession(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})
	h.invoker.Always(router.TaskSentimentAnalysis, gateway.MockReply{Text: "NEUTRAL", Delay: 5 * time.Millisecond})
	ctx := context.Background()

	const n = 6
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.orch.ProcessMessage(ctx, "shared", fmt.Sprintf("message %d", i))
		}()
	}
	wg.Wait()

	st := h.state(t, "shared")
	assert.Len(t, st.Messages, 2*n)
	assert.Equal(t, n, st.QuestionsAsked)
}

func TestProcessMessage_RejectsEmptyInput(t *testing.T) {
	h := newHarness(t, &scriptedClassifier{fallback: intent.IntentAssessmentResponse})

	assert.Equal(t, prompt.GenericApology, h.orch.ProcessMessage(context.Background(), "", "hello"))
	assert.Equal(t, prompt.GenericApology, h.orch.ProcessMessage(context.Background(), "s1", "   "))
	assert.Zero(t, h.durable.Upserts)
}

func TestRoute(t *testing.T) {
	o, err := New(Config{
		Memory:     session.NewManager(session.Config{Durable: session.NewMockDurableStore()}),
		Classifier: &scriptedClassifier{},
		Crisis:     crisis.NewEnsemble(crisis.Config{}),
		Invoker:    gateway.NewMockInvoker(),
		Router:     router.NewMockRouterService(),
	})
	require.NoError(t, err)

	fullCoverage := []assessment.Dimension{
		assessment.DimensionDuration, assessment.DimensionFrequency, assessment.DimensionIntensity,
		assessment.DimensionDailyImpact, assessment.DimensionTriggers, assessment.DimensionCoping,
	}

	tests := []struct {
		name     string
		intent   intent.Intent
		asked    int
		answered []assessment.Dimension
		intro    bool
		want     Route
	}{
		{"crisis wins over everything", intent.IntentCrisis, 0, nil, false, RouteCrisis},
		{"off topic before greeting", intent.IntentOffTopic, 0, nil, false, RouteOffTopic},
		{"no questions yet", intent.IntentAssessmentResponse, 0, nil, false, RouteGreeting},
		{"first message intent", intent.IntentFirstMessage, 3, nil, false, RouteGreeting},
		{"first message after introduction", intent.IntentFirstMessage, 3, nil, true, RouteAssessment},
		{"ceiling", intent.IntentUnclear, assessment.MaxQuestions, nil, true, RouteDiagnosis},
		{"coverage met", intent.IntentAssessmentResponse, 9, fullCoverage, true, RouteDiagnosis},
		{"coverage below floor", intent.IntentAssessmentResponse, 5, fullCoverage, true, RouteAssessment},
		{"unclear defaults to assessment", intent.IntentUnclear, 4, nil, true, RouteAssessment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := conversation.New("s1")
			st.QuestionsAsked = tt.asked
			st.DimensionsAnswered = tt.answered
			st.Introduced = tt.intro
			assert.Equal(t, tt.want, o.route(&turn{state: st, intent: intent.Result{Intent: tt.intent}}))
		})
	}
}
