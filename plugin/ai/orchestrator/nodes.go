package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hrygo/acutie/plugin/ai/assessment"
	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/gateway"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
)

// recentWindow is the number of transcript messages given to question generation.
const recentWindow = 6

// negativeValence is the valence below which the greeting asks for demographics first.
const negativeValence = -0.3

// crisisNode handles a semantic Crisis intent. Resources are emitted whatever
// the ensemble decides; its score is recorded for the logs.
func (o *Orchestrator) crisisNode(ctx context.Context, t *turn) string {
	if !t.crisisChecked {
		t.assessment = o.crisis.Detect(ctx, t.text)
		t.crisisChecked = true
		o.observeCrisis(t.assessment)
	}
	t.log.Warn("crisis intent detected",
		slog.Float64("intent_confidence", t.intent.Confidence),
		slog.Float64("ensemble_confidence", t.assessment.Confidence),
		slog.Bool("ensemble_crisis", t.assessment.IsCrisis))
	return o.escalate(t)
}

func (o *Orchestrator) offTopicNode(t *turn) string {
	st := t.state
	st.OffTopicCount++
	if st.OffTopicCount >= maxOffTopic {
		st.Phase = conversation.PhaseCompleted
		t.log.Info("session ended after repeated off-topic messages", slog.Int("off_topic_count", st.OffTopicCount))
	}
	st.AppendAssistant(prompt.OffTopicRedirect)
	return prompt.OffTopicRedirect
}

// greetingNode introduces the assistant once and asks either the combined
// demographics question or the first interview question.
func (o *Orchestrator) greetingNode(ctx context.Context, t *turn) string {
	st := t.state
	for _, c := range DetectConditions(t.text) {
		st.AddCondition(c)
	}
	if st.Sentiment == nil {
		s := o.analyzeSentiment(ctx, t)
		st.Sentiment = &s
	}

	var reply string
	if st.Sentiment.Valence < negativeValence && st.Demographics == nil && !st.DemographicsRequested {
		reply = o.generateOr(ctx, t, router.TaskGreetingEmpathetic, prompt.Context{Message: t.text}, prompt.EmpatheticGreetingFallback)
		st.DemographicsRequested = true
		st.Phase = conversation.PhaseCollectDemographics
	} else {
		reply = o.generateOr(ctx, t, router.TaskGreetingNeutral, prompt.Context{Message: t.text}, prompt.GreetingFallback)
		st.LastAskedDimension = assessment.DimensionDuration
		st.Phase = conversation.PhaseAssessment
	}
	st.Introduced = true
	st.QuestionsAsked = max(st.QuestionsAsked, 1)
	st.AppendAssistant(reply)
	return reply
}

// assessmentNode records the answer to the pending question, then either
// diagnoses or asks exactly one more question.
func (o *Orchestrator) assessmentNode(ctx context.Context, t *turn) (string, Route) {
	st := t.state
	if st.DemographicsRequested && st.Demographics == nil {
		d := ParseDemographics(t.text)
		st.Demographics = &d
		t.log.Debug("demographics recorded",
			slog.Bool("has_name", d.Name != ""),
			slog.Bool("has_age", d.Age > 0),
			slog.Bool("has_gender", d.Gender != ""))
	} else {
		o.recordAnswer(ctx, t)
	}
	st.QuestionsAsked++

	if decision := o.tracker.ShouldTrigger(st.Snapshot()); decision.Trigger {
		t.log.Info("assessment triggered", slog.String("reason", string(decision.Reason)))
		return o.diagnosisNode(ctx, t), RouteDiagnosis
	}

	next := o.tracker.NextDimension(st.Snapshot())
	pc := prompt.Context{
		Message:       t.text,
		Condition:     primaryCondition(st),
		Covered:       dimensionNames(st.DimensionsAnswered),
		NextDimension: string(next),
		Recent:        st.Recent(recentWindow),
	}
	reply := o.generateOr(ctx, t, router.TaskAssessmentQuestion, pc, prompt.Question(next))
	st.LastAskedDimension = next
	st.Phase = conversation.PhaseAssessment
	st.AppendAssistant(reply)
	return reply, RouteAssessment
}

// recordAnswer stores extracted fields and the raw answer to the pending dimension.
// Extraction only fills dimensions not answered yet; the raw text is written
// last so it wins for the asked dimension.
func (o *Orchestrator) recordAnswer(ctx context.Context, t *turn) {
	st := t.state
	asked := st.LastAskedDimension
	if asked == "" {
		return
	}

	res := o.generate(ctx, t, router.TaskResponseExtraction, prompt.Context{Message: t.text, NextDimension: string(asked)})
	if res.OK {
		fields, err := ParseExtraction(res.Text)
		if err != nil {
			t.log.Warn("unparseable extraction, keeping raw answer", slog.String("error", err.Error()))
		}
		for name, value := range fields {
			if d := assessment.Normalize(name); d != asked && !st.HasAnswered(d) {
				st.MarkAnswered(string(d), value)
			}
		}
	}
	st.MarkAnswered(string(asked), t.text)
	st.LastAskedDimension = ""
}

// diagnosisNode runs analysis then formatting. Any failure yields the fixed
// recommendation. The session always ends here.
func (o *Orchestrator) diagnosisNode(ctx context.Context, t *turn) string {
	st := t.state
	if st.LastAskedDimension != "" {
		st.MarkAnswered(string(st.LastAskedDimension), t.text)
		st.LastAskedDimension = ""
	}
	st.Phase = conversation.PhaseCompleted

	reply := prompt.DiagnosisFallback
	analysis := o.generate(ctx, t, router.TaskDiagnosisAnalysis, prompt.Context{AssessmentData: assessmentData(st)})
	if analysis.OK {
		if level, ok := ParseSeverity(analysis.Text); ok {
			st.RaiseRisk(level)
		}
		formatted := o.generate(ctx, t, router.TaskDiagnosisFormatting, prompt.Context{Analysis: analysis.Text})
		if formatted.OK && strings.TrimSpace(formatted.Text) != "" {
			reply = strings.TrimSpace(formatted.Text)
		}
	}
	st.AppendAssistant(reply)
	return reply
}

// generate builds the prompt for task and invokes the routed model.
func (o *Orchestrator) generate(ctx context.Context, t *turn, task router.TaskType, pc prompt.Context) gateway.Result {
	body, err := o.prompts.Build(task, pc)
	if err != nil {
		t.log.Error("prompt unavailable", err, slog.String("task", string(task)))
		return gateway.Result{Kind: gateway.KindUnknown, Err: err, Fallback: prompt.ErrorMessage(string(gateway.KindUnknown))}
	}
	var opts []gateway.Option
	if system := o.prompts.System(task); system != "" {
		opts = append(opts, gateway.WithSystem(system))
	}
	return o.invoker.Invoke(ctx, o.router.ConfigFor(task), body, opts...)
}

// generateOr returns the model text for task, or fallback on failure or an empty reply.
func (o *Orchestrator) generateOr(ctx context.Context, t *turn, task router.TaskType, pc prompt.Context, fallback string) string {
	res := o.generate(ctx, t, task, pc)
	if !res.OK {
		t.log.Warn("using scripted reply", slog.String("task", string(task)), slog.String("kind", string(res.Kind)))
		return fallback
	}
	if text := strings.TrimSpace(res.Text); text != "" {
		return text
	}
	return fallback
}

func primaryCondition(st *conversation.State) string {
	if len(st.ConditionHypothesis) > 0 {
		return st.ConditionHypothesis[0]
	}
	return "general concerns"
}

func dimensionNames(dims []assessment.Dimension) []string {
	names := make([]string, 0, len(dims))
	for _, d := range dims {
		names = append(names, string(d))
	}
	return names
}

// assessmentData renders the collected answers for the analysis prompt.
func assessmentData(st *conversation.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Presenting concern: %s\n", primaryCondition(st))
	if d := st.Demographics; d != nil {
		if d.Age > 0 {
			fmt.Fprintf(&b, "Age: %d\n", d.Age)
		}
		if d.Gender != "" {
			fmt.Fprintf(&b, "Gender: %s\n", d.Gender)
		}
	}
	fmt.Fprintf(&b, "Risk level: %s\n", st.RiskLevel)

	keys := make([]string, 0, len(st.Answers))
	for d := range st.Answers {
		keys = append(keys, string(d))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, st.Answers[assessment.Dimension(k)])
	}
	if first := st.FirstUserText(); first != "" {
		fmt.Fprintf(&b, "Opening message: %s\n", first)
	}
	return b.String()
}
