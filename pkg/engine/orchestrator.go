package engine

import (
	"context"
	"log"
	"strings"
	"sync"

	"ai-docchat-be/pkg/engine/clarity"
	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/engine/retrieval"
	"ai-docchat-be/pkg/engine/synthesis"
	"ai-docchat-be/pkg/store"
)

const (
	// ClarificationConfidence is attached to a clarification exit.
	ClarificationConfidence = 0.3

	clarificationPrefix = "I need some clarification: "

	// ErrorAnswer is returned when a pre-retrieval step fails hard.
	ErrorAnswer = "I encountered an error while processing your question. Please try again or contact support if the issue persists."
)

// ContextProvider loads and records per-session conversation turns.
type ContextProvider interface {
	GetContext(ctx context.Context, sessionKey string) (string, error)
	RecordTurn(ctx context.Context, sessionKey string, turn *store.Turn) error
}

// ClarityClassifier decides whether a question can be answered as-is.
type ClarityClassifier interface {
	Classify(ctx context.Context, question, convContext string) (*clarity.Result, error)
}

// RouteSelector picks the retrieval route for a clear question.
type RouteSelector interface {
	Route(ctx context.Context, question, convContext string) (*store.RouteDecision, error)
}

// RetrievalStep produces a grounded answer from one source.
type RetrievalStep interface {
	Retrieve(ctx context.Context, question, convContext string) (*store.RetrievalOutcome, error)
}

// FallbackController decides whether a corpus outcome warrants a web retry.
type FallbackController interface {
	ShouldFallback(outcome *store.RetrievalOutcome) bool
}

// AnswerSynthesizer combines retrieval outcomes into the final answer.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, convContext string, corpus, web *store.RetrievalOutcome) *synthesis.FinalAnswer
}

// Result is the orchestrator's terminal output for one question.
type Result struct {
	Answer              string
	Sources             []store.EvidenceItem
	Confidence          float64
	EffectiveRoute      store.Route
	NeedsClarification  bool
	ClarificationReason string
	UsedCorpus          bool
	UsedWeb             bool
	CorpusConfidence    float64
	WebConfidence       float64
}

// Orchestrator runs one question through context loading, clarity
// classification, routing, retrieval, fallback and synthesis, and records
// the resulting turns.
type Orchestrator struct {
	sessions    ContextProvider
	clarity     ClarityClassifier
	router      RouteSelector
	corpus      RetrievalStep
	web         RetrievalStep
	fallback    FallbackController
	synthesizer AnswerSynthesizer
	logger      *log.Logger
}

func NewOrchestrator(
	sessions ContextProvider,
	clarityClassifier ClarityClassifier,
	router RouteSelector,
	corpus RetrievalStep,
	web RetrievalStep,
	fallbackController FallbackController,
	synthesizer AnswerSynthesizer,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		sessions:    sessions,
		clarity:     clarityClassifier,
		router:      router,
		corpus:      corpus,
		web:         web,
		fallback:    fallbackController,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Ask answers one question for a session. Retrieval failures degrade to
// empty outcomes; classification and routing failures produce an error
// result alongside the error so callers can still render something.
func (o *Orchestrator) Ask(ctx context.Context, sessionKey, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &enginerr.ValidationError{Field: "question", Message: "question must not be empty"}
	}
	if strings.TrimSpace(sessionKey) == "" {
		return nil, &enginerr.ValidationError{Field: "session_id", Message: "session id must not be empty"}
	}

	convContext, err := o.sessions.GetContext(ctx, sessionKey)
	if err != nil {
		// An unreadable history should not block answering; proceed context-free.
		o.logger.Printf("[ORCHESTRATOR] context load failed for session %s, continuing without history: %v", sessionKey, err)
		convContext = ""
	}

	clarityResult, err := o.clarity.Classify(ctx, question, convContext)
	if err != nil {
		return o.errorExit(ctx, sessionKey, question, "clarity", err)
	}

	if !clarityResult.Clear {
		return o.clarificationExit(ctx, sessionKey, question, clarityResult.Reason)
	}

	effectiveQuestion := question
	if clarityResult.CombinedQuestion != "" {
		effectiveQuestion = clarityResult.CombinedQuestion
	}

	decision, err := o.router.Route(ctx, effectiveQuestion, convContext)
	if err != nil {
		return o.errorExit(ctx, sessionKey, question, "routing", err)
	}
	o.logger.Printf("[ORCHESTRATOR] session=%s route=%s reason=%s", sessionKey, decision.Route, decision.Reason)

	corpusOutcome, webOutcome, effectiveRoute := o.retrieve(ctx, effectiveQuestion, convContext, decision.Route)

	final := o.synthesizer.Synthesize(ctx, effectiveQuestion, convContext, corpusOutcome, webOutcome)

	if err := o.recordExchange(ctx, sessionKey, question, final, effectiveRoute); err != nil {
		o.logger.Printf("[ORCHESTRATOR] failed to record turns for session %s: %v", sessionKey, err)
	}

	return &Result{
		Answer:           final.Text,
		Sources:          final.Evidence,
		Confidence:       final.Confidence,
		EffectiveRoute:   effectiveRoute,
		UsedCorpus:       final.UsedCorpus,
		UsedWeb:          final.UsedWeb,
		CorpusConfidence: final.CorpusConfidence,
		WebConfidence:    final.WebConfidence,
	}, nil
}

// retrieve executes the selected route and reports the route that actually
// ran, which differs from the decision when the corpus fallback fires.
func (o *Orchestrator) retrieve(ctx context.Context, question, convContext string, selected store.Route) (*store.RetrievalOutcome, *store.RetrievalOutcome, store.Route) {
	switch selected {
	case store.RouteWeb:
		return nil, o.runWeb(ctx, question, convContext), store.RouteWeb

	case store.RouteBoth:
		var corpusOutcome, webOutcome *store.RetrievalOutcome
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			corpusOutcome = o.runCorpus(ctx, question, convContext)
		}()
		go func() {
			defer wg.Done()
			webOutcome = o.runWeb(ctx, question, convContext)
		}()
		wg.Wait()
		return corpusOutcome, webOutcome, store.RouteBoth

	default:
		corpusOutcome := o.runCorpus(ctx, question, convContext)
		if o.fallback.ShouldFallback(corpusOutcome) {
			o.logger.Printf("[ORCHESTRATOR] corpus outcome insufficient, falling back to web")
			return corpusOutcome, o.runWeb(ctx, question, convContext), store.RouteCorpusWithWebFallback
		}
		return corpusOutcome, nil, store.RouteCorpus
	}
}

// runCorpus degrades a failed corpus retrieval to an empty outcome so the
// rest of the pipeline keeps going.
func (o *Orchestrator) runCorpus(ctx context.Context, question, convContext string) *store.RetrievalOutcome {
	outcome, err := o.corpus.Retrieve(ctx, question, convContext)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] corpus retrieval failed: %v", err)
		return retrieval.EmptyOutcome(retrieval.InsufficientCorpusAnswer)
	}
	return outcome
}

func (o *Orchestrator) runWeb(ctx context.Context, question, convContext string) *store.RetrievalOutcome {
	outcome, err := o.web.Retrieve(ctx, question, convContext)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] web retrieval failed: %v", err)
		return retrieval.EmptyOutcome(retrieval.InsufficientWebAnswer)
	}
	return outcome
}

func (o *Orchestrator) clarificationExit(ctx context.Context, sessionKey, question, reason string) (*Result, error) {
	answer := clarificationPrefix + reason

	if err := o.sessions.RecordTurn(ctx, sessionKey, &store.Turn{Type: store.TurnQuestion, Text: question}); err != nil {
		o.logger.Printf("[ORCHESTRATOR] failed to record question turn: %v", err)
	}
	if err := o.sessions.RecordTurn(ctx, sessionKey, &store.Turn{Type: store.TurnClarification, Text: answer}); err != nil {
		o.logger.Printf("[ORCHESTRATOR] failed to record clarification turn: %v", err)
	}

	return &Result{
		Answer:              answer,
		Confidence:          ClarificationConfidence,
		NeedsClarification:  true,
		ClarificationReason: reason,
	}, nil
}

func (o *Orchestrator) errorExit(ctx context.Context, sessionKey, question, stage string, cause error) (*Result, error) {
	o.logger.Printf("[ORCHESTRATOR] %s failed for session %s: %v", stage, sessionKey, cause)

	if err := o.sessions.RecordTurn(ctx, sessionKey, &store.Turn{Type: store.TurnQuestion, Text: question}); err != nil {
		o.logger.Printf("[ORCHESTRATOR] failed to record question turn: %v", err)
	}
	errTurn := &store.Turn{
		Type:       store.TurnError,
		Text:       ErrorAnswer,
		Attributes: map[string]interface{}{"error_type": stage},
	}
	if err := o.sessions.RecordTurn(ctx, sessionKey, errTurn); err != nil {
		o.logger.Printf("[ORCHESTRATOR] failed to record error turn: %v", err)
	}

	return &Result{Answer: ErrorAnswer, Confidence: 0}, cause
}

func (o *Orchestrator) recordExchange(ctx context.Context, sessionKey, question string, final *synthesis.FinalAnswer, effectiveRoute store.Route) error {
	if err := o.sessions.RecordTurn(ctx, sessionKey, &store.Turn{Type: store.TurnQuestion, Text: question}); err != nil {
		return err
	}

	sources := make([]map[string]interface{}, 0, len(final.Evidence))
	for _, item := range final.Evidence {
		entry := map[string]interface{}{"source": item.Source}
		if item.Locator.Filename != "" {
			entry["filename"] = item.Locator.Filename
			entry["chunk_index"] = item.Locator.ChunkIndex
		}
		if item.Locator.URL != "" {
			entry["url"] = item.Locator.URL
		}
		sources = append(sources, entry)
	}

	return o.sessions.RecordTurn(ctx, sessionKey, &store.Turn{
		Type: store.TurnAnswer,
		Text: final.Text,
		Attributes: map[string]interface{}{
			"confidence": final.Confidence,
			"route":      string(effectiveRoute),
			"sources":    sources,
		},
	})
}
