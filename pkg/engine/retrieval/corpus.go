package retrieval

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/engine/prompt"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

// InsufficientCorpusAnswer is the canned text for a corpus search that
// yielded nothing.
const InsufficientCorpusAnswer = "I couldn't find any relevant information in the indexed documents to answer your question. Please make sure the relevant documents have been ingested first."

// corpusConfidenceCap keeps corpus confidence shy of certainty regardless
// of how well the passages scored.
const corpusConfidenceCap = 0.9

// PassageSearcher is the consumed contract of the corpus search service.
type PassageSearcher interface {
	Search(ctx context.Context, query string, k int) ([]store.PassageResult, error)
}

// CorpusStep answers a question from the private document corpus.
type CorpusStep struct {
	searcher    PassageSearcher
	llmProvider llm.LLMProvider
	topK        int
	timeout     time.Duration
	logger      *log.Logger
}

func NewCorpusStep(searcher PassageSearcher, llmProvider llm.LLMProvider, topK int, timeout time.Duration, logger *log.Logger) *CorpusStep {
	if topK <= 0 {
		topK = DefaultCorpusTopK
	}
	return &CorpusStep{
		searcher:    searcher,
		llmProvider: llmProvider,
		topK:        topK,
		timeout:     timeout,
		logger:      logger,
	}
}

// Retrieve searches the corpus and, only when passages came back, invokes
// the reasoning service once over all of them. A zero-yield search
// short-circuits to an empty outcome without a reasoning call.
func (s *CorpusStep) Retrieve(ctx context.Context, question, convContext string) (*store.RetrievalOutcome, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.searcher.Search(stepCtx, question, s.topK)
	if err != nil {
		return nil, enginerr.External("corpus-search", err)
	}

	if len(results) == 0 {
		s.logger.Printf("[CORPUS] zero passages, skipping reasoning call")
		return EmptyOutcome(InsufficientCorpusAnswer), nil
	}

	evidence := make([]store.EvidenceItem, len(results))
	for i, r := range results {
		evidence[i] = store.EvidenceItem{
			Source:    store.SourceCorpus,
			Content:   r.Content,
			Relevance: r.Score,
			Locator: store.Locator{
				DocumentID: r.DocumentID,
				Filename:   r.Filename,
				ChunkIndex: r.ChunkIndex,
			},
		}
	}

	answer, err := s.llmProvider.Generate(stepCtx, prompt.CorpusAnswer(question, convContext, formatPassages(results)))
	if err != nil {
		return nil, enginerr.External("reasoning", err)
	}

	confidence := math.Min(corpusConfidenceCap, Confidence(evidence))
	s.logger.Printf("[CORPUS] %d passages, confidence %.2f", len(results), confidence)

	return &store.RetrievalOutcome{
		AnswerText: answer,
		Evidence:   evidence,
		Confidence: confidence,
	}, nil
}

func formatPassages(results []store.PassageResult) string {
	var b strings.Builder
	for i, r := range results {
		sourceInfo := fmt.Sprintf("Source %d", i+1)
		if r.Filename != "" {
			sourceInfo += " - " + r.Filename
		}
		sourceInfo += fmt.Sprintf(" (Chunk %d)", r.ChunkIndex)
		b.WriteString(sourceInfo)
		b.WriteString(":\n")
		b.WriteString(r.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
