package route

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/engine/prompt"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

// Sentinel prefixes of the routing response
const (
	PrefixCorpus = "CORPUS:"
	PrefixWeb    = "WEB:"
	PrefixBoth   = "BOTH:"
)

// DefaultReason justifies the deterministic CORPUS default used whenever
// the routing response matches no sentinel. Corpus-first is the conservative
// choice: corpus retrieval is cheap and the fallback controller covers misses.
const DefaultReason = "Defaulting to corpus search; corpus retrieval is cheap and the web fallback covers misses."

// Selector decides which knowledge source(s) should answer a question.
type Selector struct {
	llmProvider llm.LLMProvider
	timeout     time.Duration
	logger      *log.Logger
}

func NewSelector(llmProvider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Selector {
	return &Selector{
		llmProvider: llmProvider,
		timeout:     timeout,
		logger:      logger,
	}
}

// Route asks the reasoning service for a three-way decision. A failed call
// is propagated: routing is a gating decision (see the error taxonomy).
func (s *Selector) Route(ctx context.Context, question, convContext string) (*store.RouteDecision, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llmProvider.Generate(callCtx, prompt.Route(question, convContext))
	if err != nil {
		return nil, enginerr.External("reasoning", err)
	}

	decision := Parse(raw)
	s.logger.Printf("[ROUTE] %s: %s", decision.Route, truncate(decision.Reason, 80))
	return decision, nil
}

// Parse maps a sentinel-prefixed response onto a RouteDecision.
// Unparseable output falls to the CORPUS default.
func Parse(raw string) *store.RouteDecision {
	content := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(content, PrefixCorpus):
		return &store.RouteDecision{
			Route:  store.RouteCorpus,
			Reason: strings.TrimSpace(content[len(PrefixCorpus):]),
		}
	case strings.HasPrefix(content, PrefixWeb):
		return &store.RouteDecision{
			Route:  store.RouteWeb,
			Reason: strings.TrimSpace(content[len(PrefixWeb):]),
		}
	case strings.HasPrefix(content, PrefixBoth):
		return &store.RouteDecision{
			Route:  store.RouteBoth,
			Reason: strings.TrimSpace(content[len(PrefixBoth):]),
		}
	default:
		return &store.RouteDecision{
			Route:  store.RouteCorpus,
			Reason: DefaultReason,
		}
	}
}

// truncate shortens s to max runes, never splitting a multi-byte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
