package synthesis

import (
	"context"
	"log"
	"time"

	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/engine/fallback"
	"ai-docchat-be/pkg/engine/prompt"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

const (
	// DefaultTimeout bounds a single merge or attribution call.
	DefaultTimeout = 20 * time.Second

	// NoInformationAnswer is returned when neither retrieval path produced
	// anything usable. No reasoning call is made in that case.
	NoInformationAnswer = "I couldn't find relevant information from either the document corpus or web search to answer your question."

	// NoInformationConfidence is the fixed score attached to NoInformationAnswer.
	NoInformationConfidence = 0.1

	corpusSourceLabel = "the document corpus"
	webSourceLabel    = "web search"
)

// FinalAnswer is the synthesized result handed back to the orchestrator.
type FinalAnswer struct {
	Text             string
	Evidence         []store.EvidenceItem
	Confidence       float64
	UsedCorpus       bool
	UsedWeb          bool
	CorpusConfidence float64
	WebConfidence    float64
}

// Synthesizer combines corpus and web retrieval outcomes into one answer.
type Synthesizer struct {
	llmProvider llm.LLMProvider
	timeout     time.Duration
	logger      *log.Logger
}

func NewSynthesizer(llmProvider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synthesizer{
		llmProvider: llmProvider,
		timeout:     timeout,
		logger:      logger,
	}
}

// Synthesize merges whatever the retrieval steps produced. Both outcomes
// usable: merge with attribution. One usable: restate with attribution.
// Neither: canned no-information answer without touching the reasoning
// service. Reasoning failures degrade instead of erroring out.
func (s *Synthesizer) Synthesize(ctx context.Context, question, convContext string, corpus, web *store.RetrievalOutcome) *FinalAnswer {
	corpusUsable := usable(corpus)
	webUsable := usable(web)

	switch {
	case corpusUsable && webUsable:
		return s.mergeBoth(ctx, question, convContext, corpus, web)
	case corpusUsable:
		return s.restateSingle(ctx, question, convContext, corpus, corpusSourceLabel, true, false)
	case webUsable:
		return s.restateSingle(ctx, question, convContext, web, webSourceLabel, false, true)
	default:
		return &FinalAnswer{
			Text:       NoInformationAnswer,
			Confidence: NoInformationConfidence,
		}
	}
}

func (s *Synthesizer) mergeBoth(ctx context.Context, question, convContext string, corpus, web *store.RetrievalOutcome) *FinalAnswer {
	mergeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	merged, err := s.llmProvider.Generate(mergeCtx, prompt.Merge(question, convContext, corpus.AnswerText, web.AnswerText))
	if err != nil {
		s.logger.Printf("[SYNTHESIS] %v, keeping stronger single source", &enginerr.SynthesisError{Err: err})
		if corpus.Confidence >= web.Confidence {
			return s.restateSingle(ctx, question, convContext, corpus, corpusSourceLabel, true, false)
		}
		return s.restateSingle(ctx, question, convContext, web, webSourceLabel, false, true)
	}

	evidence := make([]store.EvidenceItem, 0, len(corpus.Evidence)+len(web.Evidence))
	evidence = append(evidence, corpus.Evidence...)
	evidence = append(evidence, web.Evidence...)

	return &FinalAnswer{
		Text:             merged,
		Evidence:         evidence,
		Confidence:       (corpus.Confidence + web.Confidence) / 2,
		UsedCorpus:       true,
		UsedWeb:          true,
		CorpusConfidence: corpus.Confidence,
		WebConfidence:    web.Confidence,
	}
}

func (s *Synthesizer) restateSingle(ctx context.Context, question, convContext string, outcome *store.RetrievalOutcome, sourceLabel string, fromCorpus, fromWeb bool) *FinalAnswer {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.llmProvider.Generate(ctx, prompt.Attribute(question, convContext, sourceLabel, outcome.AnswerText))
	if err != nil {
		s.logger.Printf("[SYNTHESIS] attribution failed, returning raw answer: %v", err)
		text = "Based on " + sourceLabel + ": " + outcome.AnswerText
	}

	answer := &FinalAnswer{
		Text:       text,
		Evidence:   outcome.Evidence,
		Confidence: outcome.Confidence,
		UsedCorpus: fromCorpus,
		UsedWeb:    fromWeb,
	}
	if fromCorpus {
		answer.CorpusConfidence = outcome.Confidence
	}
	if fromWeb {
		answer.WebConfidence = outcome.Confidence
	}
	return answer
}

// usable reports whether an outcome carries real grounding: present,
// non-empty, and an answer that is not itself an insufficiency notice.
func usable(outcome *store.RetrievalOutcome) bool {
	if outcome == nil || outcome.Empty {
		return false
	}
	return !fallback.InsufficientText(outcome.AnswerText)
}
