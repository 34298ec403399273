package engine

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"ai-docchat-be/pkg/engine/clarity"
	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/engine/fallback"
	"ai-docchat-be/pkg/engine/retrieval"
	"ai-docchat-be/pkg/engine/synthesis"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	context  string
	ctxErr   error
	recorded []*store.Turn
}

func (f *fakeSessions) GetContext(ctx context.Context, sessionKey string) (string, error) {
	return f.context, f.ctxErr
}

func (f *fakeSessions) RecordTurn(ctx context.Context, sessionKey string, turn *store.Turn) error {
	f.recorded = append(f.recorded, turn)
	return nil
}

type fakeClarity struct {
	result *clarity.Result
	err    error
}

func (f *fakeClarity) Classify(ctx context.Context, question, convContext string) (*clarity.Result, error) {
	return f.result, f.err
}

type fakeRouter struct {
	decision *store.RouteDecision
	err      error
	calls    int
	lastQ    string
}

func (f *fakeRouter) Route(ctx context.Context, question, convContext string) (*store.RouteDecision, error) {
	f.calls++
	f.lastQ = question
	return f.decision, f.err
}

type fakeStep struct {
	outcome *store.RetrievalOutcome
	err     error
	calls   int
}

func (f *fakeStep) Retrieve(ctx context.Context, question, convContext string) (*store.RetrievalOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

func clearResult() *clarity.Result {
	return &clarity.Result{Clear: true}
}

func strongCorpusOutcome() *store.RetrievalOutcome {
	return &store.RetrievalOutcome{
		AnswerText: "Attention weighs token pairs.",
		Evidence: []store.EvidenceItem{
			{Source: store.SourceCorpus, Content: "c", Relevance: 0.8, Locator: store.Locator{DocumentID: "doc-1", Filename: "paper.pdf", ChunkIndex: 1}},
		},
		Confidence: 0.8,
	}
}

func webSearchOutcome() *store.RetrievalOutcome {
	return &store.RetrievalOutcome{
		AnswerText: "Per recent coverage, attention is a weighting scheme.",
		Evidence: []store.EvidenceItem{
			{Source: store.SourceWeb, Content: "w", Relevance: 0.6, Locator: store.Locator{URL: "https://example.com", Title: "Attention"}},
		},
		Confidence: 0.6,
	}
}

func newTestOrchestrator(sessions *fakeSessions, cl *fakeClarity, router *fakeRouter, corpus, web *fakeStep, llmResponse string) *Orchestrator {
	logger := log.New(os.Stderr, "", 0)
	synth := synthesis.NewSynthesizer(&fakeLLM{response: llmResponse}, 0, logger)
	return NewOrchestrator(sessions, cl, router, corpus, web, fallback.NewController(logger), synth, logger)
}

type fakeLLM struct {
	response string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, nil
}

func TestAskCorpusRouteWithoutFallback(t *testing.T) {
	sessions := &fakeSessions{}
	corpus := &fakeStep{outcome: strongCorpusOutcome()}
	web := &fakeStep{outcome: webSearchOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteCorpus, Reason: "domain question"}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, corpus, web, "From the document corpus: attention weighs token pairs.")

	result, err := o.Ask(context.Background(), "sess-1", "How does attention work?")
	require.NoError(t, err)

	assert.Equal(t, store.RouteCorpus, result.EffectiveRoute)
	assert.True(t, result.UsedCorpus)
	assert.False(t, result.UsedWeb)
	assert.Equal(t, 1, corpus.calls)
	assert.Zero(t, web.calls, "a sufficient corpus answer must not trigger web search")
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)

	require.Len(t, sessions.recorded, 2)
	assert.Equal(t, store.TurnQuestion, sessions.recorded[0].Type)
	assert.Equal(t, store.TurnAnswer, sessions.recorded[1].Type)
	assert.Equal(t, string(store.RouteCorpus), sessions.recorded[1].Attributes["route"])
}

func TestAskCorpusFallbackToWeb(t *testing.T) {
	sessions := &fakeSessions{}
	corpus := &fakeStep{outcome: retrieval.EmptyOutcome(retrieval.InsufficientCorpusAnswer)}
	web := &fakeStep{outcome: webSearchOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteCorpus, Reason: "default"}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, corpus, web, "According to web search: a weighting scheme.")

	result, err := o.Ask(context.Background(), "sess-1", "How does attention work?")
	require.NoError(t, err)

	assert.Equal(t, store.RouteCorpusWithWebFallback, result.EffectiveRoute)
	assert.Equal(t, 1, corpus.calls)
	assert.Equal(t, 1, web.calls)
	assert.False(t, result.UsedCorpus)
	assert.True(t, result.UsedWeb)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
}

func TestAskBothRouteRunsBothSteps(t *testing.T) {
	sessions := &fakeSessions{}
	corpus := &fakeStep{outcome: strongCorpusOutcome()}
	web := &fakeStep{outcome: webSearchOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteBoth, Reason: "needs both"}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, corpus, web, "Merged answer.")

	result, err := o.Ask(context.Background(), "sess-1", "Compare the paper with current practice")
	require.NoError(t, err)

	assert.Equal(t, store.RouteBoth, result.EffectiveRoute)
	assert.Equal(t, 1, corpus.calls)
	assert.Equal(t, 1, web.calls)
	assert.True(t, result.UsedCorpus)
	assert.True(t, result.UsedWeb)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.Len(t, result.Sources, 2)
}

func TestAskWebRouteSkipsCorpus(t *testing.T) {
	sessions := &fakeSessions{}
	corpus := &fakeStep{outcome: strongCorpusOutcome()}
	web := &fakeStep{outcome: webSearchOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteWeb, Reason: "current events"}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, corpus, web, "According to web search: latest release notes say X.")

	result, err := o.Ask(context.Background(), "sess-1", "What changed in the latest release?")
	require.NoError(t, err)

	assert.Equal(t, store.RouteWeb, result.EffectiveRoute)
	assert.Zero(t, corpus.calls)
	assert.Equal(t, 1, web.calls)
	assert.False(t, result.UsedCorpus)
	assert.True(t, result.UsedWeb)
}

func TestAskRetrievalFailuresDegradeToNoInformation(t *testing.T) {
	sessions := &fakeSessions{}
	corpus := &fakeStep{err: errors.New("pg down")}
	web := &fakeStep{err: errors.New("search api down")}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteBoth, Reason: "needs both"}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, corpus, web, "unused")

	result, err := o.Ask(context.Background(), "sess-1", "q")
	require.NoError(t, err, "retrieval failures degrade instead of erroring")

	assert.Equal(t, synthesis.NoInformationAnswer, result.Answer)
	assert.Equal(t, synthesis.NoInformationConfidence, result.Confidence)
	assert.Empty(t, result.Sources)
}

func TestAskClarificationExit(t *testing.T) {
	sessions := &fakeSessions{}
	corpus := &fakeStep{outcome: strongCorpusOutcome()}
	web := &fakeStep{outcome: webSearchOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteCorpus}}
	cl := &fakeClarity{result: &clarity.Result{Clear: false, Reason: "Which framework do you mean?"}}
	o := newTestOrchestrator(sessions, cl, router, corpus, web, "unused")

	result, err := o.Ask(context.Background(), "sess-1", "How do I configure it?")
	require.NoError(t, err)

	assert.True(t, result.NeedsClarification)
	assert.Equal(t, "I need some clarification: Which framework do you mean?", result.Answer)
	assert.Equal(t, "Which framework do you mean?", result.ClarificationReason)
	assert.InDelta(t, ClarificationConfidence, result.Confidence, 1e-9)
	assert.Zero(t, router.calls, "clarification must short-circuit before routing")
	assert.Zero(t, corpus.calls)
	assert.Zero(t, web.calls)

	require.Len(t, sessions.recorded, 2)
	assert.Equal(t, store.TurnQuestion, sessions.recorded[0].Type)
	assert.Equal(t, store.TurnClarification, sessions.recorded[1].Type)
}

func TestAskCombinedQuestionDrivesDownstream(t *testing.T) {
	sessions := &fakeSessions{context: "User: Tell me about Fiber\nAssistant: Fiber is a Go web framework."}
	corpus := &fakeStep{outcome: strongCorpusOutcome()}
	web := &fakeStep{outcome: webSearchOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteCorpus}}
	cl := &fakeClarity{result: &clarity.Result{Clear: true, CombinedQuestion: "How does routing work in Fiber?"}}
	o := newTestOrchestrator(sessions, cl, router, corpus, web, "answer")

	_, err := o.Ask(context.Background(), "sess-1", "How does routing work in it?")
	require.NoError(t, err)

	assert.Equal(t, "How does routing work in Fiber?", router.lastQ)
	// the history keeps the user's literal words, not the rewrite
	require.NotEmpty(t, sessions.recorded)
	assert.Equal(t, "How does routing work in it?", sessions.recorded[0].Text)
}

func TestAskClassifierErrorProducesErrorResult(t *testing.T) {
	sessions := &fakeSessions{}
	cause := &enginerr.ExternalServiceError{Service: "reasoning", Err: errors.New("model offline")}
	o := newTestOrchestrator(sessions, &fakeClarity{err: cause}, &fakeRouter{}, &fakeStep{}, &fakeStep{}, "unused")

	result, err := o.Ask(context.Background(), "sess-1", "q")
	require.Error(t, err)

	var extErr *enginerr.ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrorAnswer, result.Answer)
	assert.Zero(t, result.Confidence)

	require.Len(t, sessions.recorded, 2)
	assert.Equal(t, store.TurnQuestion, sessions.recorded[0].Type)
	assert.Equal(t, store.TurnError, sessions.recorded[1].Type)
	assert.Equal(t, "clarity", sessions.recorded[1].Attributes["error_type"])
}

func TestAskRouterErrorProducesErrorResult(t *testing.T) {
	sessions := &fakeSessions{}
	router := &fakeRouter{err: &enginerr.ExternalServiceError{Service: "reasoning", Err: errors.New("timeout")}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, &fakeStep{}, &fakeStep{}, "unused")

	result, err := o.Ask(context.Background(), "sess-1", "q")
	require.Error(t, err)
	assert.Equal(t, ErrorAnswer, result.Answer)
	assert.Equal(t, "routing", sessions.recorded[1].Attributes["error_type"])
}

func TestAskRejectsBlankInput(t *testing.T) {
	o := newTestOrchestrator(&fakeSessions{}, &fakeClarity{result: clearResult()}, &fakeRouter{}, &fakeStep{}, &fakeStep{}, "unused")

	_, err := o.Ask(context.Background(), "sess-1", "   ")
	var validationErr *enginerr.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "question", validationErr.Field)

	_, err = o.Ask(context.Background(), "", "q")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "session_id", validationErr.Field)
}

func TestAskContextLoadFailureStillAnswers(t *testing.T) {
	sessions := &fakeSessions{ctxErr: errors.New("redis down")}
	corpus := &fakeStep{outcome: strongCorpusOutcome()}
	router := &fakeRouter{decision: &store.RouteDecision{Route: store.RouteCorpus}}
	o := newTestOrchestrator(sessions, &fakeClarity{result: clearResult()}, router, corpus, &fakeStep{}, "answer")

	result, err := o.Ask(context.Background(), "sess-1", "q")
	require.NoError(t, err)
	assert.True(t, result.UsedCorpus)
}
