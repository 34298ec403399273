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
	"ai-docchat-be/pkg/websearch"
)

// InsufficientWebAnswer is the canned text for a web search that yielded
// nothing.
const InsufficientWebAnswer = "I couldn't find any relevant information from web search to answer your question. Please try rephrasing your question."

// Web snippets are noisier than corpus passages, so their confidence caps
// lower.
const webConfidenceCap = 0.8

// snippetLimit bounds how much of each web snippet reaches the prompt.
const snippetLimit = 500

// WebSearcher is the consumed contract of the web search service.
// Satisfied by any websearch.Provider.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// WebStep answers a question from live web search.
type WebStep struct {
	searcher    WebSearcher
	llmProvider llm.LLMProvider
	maxResults  int
	timeout     time.Duration
	logger      *log.Logger
}

func NewWebStep(searcher WebSearcher, llmProvider llm.LLMProvider, maxResults int, timeout time.Duration, logger *log.Logger) *WebStep {
	if maxResults <= 0 {
		maxResults = DefaultWebMaxResults
	}
	return &WebStep{
		searcher:    searcher,
		llmProvider: llmProvider,
		maxResults:  maxResults,
		timeout:     timeout,
		logger:      logger,
	}
}

// Retrieve mirrors CorpusStep.Retrieve against the web search service.
// Source URLs are preserved per evidence item for citation.
func (s *WebStep) Retrieve(ctx context.Context, question, convContext string) (*store.RetrievalOutcome, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.searcher.Search(stepCtx, question, s.maxResults)
	if err != nil {
		return nil, enginerr.External("web-search", err)
	}

	if len(results) == 0 {
		s.logger.Printf("[WEB] zero results, skipping reasoning call")
		return EmptyOutcome(InsufficientWebAnswer), nil
	}

	evidence := make([]store.EvidenceItem, len(results))
	for i, r := range results {
		evidence[i] = store.EvidenceItem{
			Source:    store.SourceWeb,
			Content:   r.Content,
			Relevance: r.Score,
			Locator: store.Locator{
				Title: r.Title,
				URL:   r.URL,
			},
		}
	}

	answer, err := s.llmProvider.Generate(stepCtx, prompt.WebAnswer(question, convContext, formatWebResults(results)))
	if err != nil {
		return nil, enginerr.External("reasoning", err)
	}

	confidence := math.Min(webConfidenceCap, Confidence(evidence))
	s.logger.Printf("[WEB] %d results, confidence %.2f", len(results), confidence)

	return &store.RetrievalOutcome{
		AnswerText: answer,
		Evidence:   evidence,
		Confidence: confidence,
	}, nil
}

func formatWebResults(results []websearch.Result) string {
	var b strings.Builder
	for i, r := range results {
		content := r.Content
		// Truncate on a rune boundary so a multi-byte character is never
		// split into invalid UTF-8 inside the prompt.
		if runes := []rune(content); len(runes) > snippetLimit {
			content = string(runes[:snippetLimit]) + "..."
		}
		b.WriteString(fmt.Sprintf("Source %d - %s\nURL: %s\nContent: %s\n\n", i+1, r.Title, r.URL, content))
	}
	return b.String()
}
