package fallback

import (
	"log"
	"strings"

	"ai-docchat-be/pkg/store"
)

// ConfidenceThreshold below which a corpus outcome is judged insufficient.
const ConfidenceThreshold = 0.5

// insufficiencyPhrases mark answers that admit having found nothing. The
// substring match is deliberately loose: it mirrors the phrasing the
// retrieval prompts instruct the model to use when evidence is thin.
var insufficiencyPhrases = []string{
	"couldn't find",
	"no relevant information",
	"don't contain enough information",
	"unable to find",
	"no information available",
}

// InsufficientText reports whether an answer admits insufficiency.
// Shared with synthesis, where a matching result is treated as absent.
func InsufficientText(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range insufficiencyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Controller decides whether a corpus-only retrieval needs a compensating
// web search.
type Controller struct {
	logger *log.Logger
}

func NewController(logger *log.Logger) *Controller {
	return &Controller{logger: logger}
}

// ShouldFallback is an OR of independent weak signals: low confidence, no
// evidence, or an answer admitting insufficiency. Any single one triggers
// escalation, since corpus answers fail in different modes (verbose but
// empty, confident but wrong, silent).
func (c *Controller) ShouldFallback(outcome *store.RetrievalOutcome) bool {
	if outcome == nil {
		return true
	}
	if outcome.Confidence < ConfidenceThreshold {
		c.logger.Printf("[FALLBACK] confidence %.2f below %.2f", outcome.Confidence, ConfidenceThreshold)
		return true
	}
	if len(outcome.Evidence) == 0 {
		c.logger.Printf("[FALLBACK] outcome has no evidence")
		return true
	}
	if InsufficientText(outcome.AnswerText) {
		c.logger.Printf("[FALLBACK] answer admits insufficiency")
		return true
	}
	return false
}
