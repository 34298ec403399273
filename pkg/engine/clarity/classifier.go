package clarity

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/engine/prompt"
	"ai-docchat-be/pkg/llm"
)

// Sentinel prefixes of the reasoning-service response. The verdict line
// carries one of the two; an optional COMBINED line precedes it when the
// model rewrote the question against the conversation context.
const (
	PrefixClear              = "CLEAR:"
	PrefixNeedsClarification = "NEEDS_CLARIFICATION:"
	PrefixCombined           = "COMBINED:"
)

// Result is the post-processed clarity verdict. CombinedQuestion supersedes
// the original question for every downstream step.
type Result struct {
	Clear            bool
	CombinedQuestion string
	Reason           string
}

// Classifier decides whether a question is answerable as-is.
type Classifier struct {
	llmProvider llm.LLMProvider
	timeout     time.Duration
	logger      *log.Logger
}

func NewClassifier(llmProvider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		timeout:     timeout,
		logger:      logger,
	}
}

// Classify delegates the judgement to the reasoning service and applies the
// sentinel contract. A failed call is returned as an error: clarity is a
// gating decision, so a silent default would cause wrong routing downstream.
func (c *Classifier) Classify(ctx context.Context, question, convContext string) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.llmProvider.Generate(callCtx, prompt.Clarity(question, convContext))
	if err != nil {
		return nil, enginerr.External("reasoning", err)
	}

	result := Parse(question, raw)
	c.logger.Printf("[CLARITY] clear=%v combined=%q", result.Clear, result.CombinedQuestion)
	return result, nil
}

// Parse applies the sentinel contract to a raw classifier response.
// A response matching neither verdict sentinel fails open: the whole text
// becomes the reason and the question is treated as clear, so classifier
// drift never blocks the pipeline.
func Parse(question, raw string) *Result {
	combined := question

	// Lift the optional COMBINED line out of the response body first.
	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, PrefixCombined) {
			if q := strings.TrimSpace(trimmed[len(PrefixCombined):]); q != "" {
				combined = q
			}
			continue
		}
		kept = append(kept, line)
	}
	content := strings.TrimSpace(strings.Join(kept, "\n"))

	if strings.HasPrefix(content, PrefixNeedsClarification) {
		return &Result{
			Clear:            false,
			CombinedQuestion: combined,
			Reason:           strings.TrimSpace(content[len(PrefixNeedsClarification):]),
		}
	}

	if strings.HasPrefix(content, PrefixClear) {
		return &Result{
			Clear:            true,
			CombinedQuestion: combined,
			Reason:           strings.TrimSpace(content[len(PrefixClear):]),
		}
	}

	return &Result{
		Clear:            true,
		CombinedQuestion: combined,
		Reason:           content,
	}
}
