package retrieval

import (
	"ai-docchat-be/pkg/store"
)

// Defaults for how many results each source is asked for.
const (
	DefaultCorpusTopK    = 10
	DefaultWebMaxResults = 5
)

// EmptyConfidence is the fixed confidence of an outcome with no usable
// evidence, whether from an empty search or a failed step.
const EmptyConfidence = 0.1

// RelevanceFloor separates evidence that counts toward confidence from
// low-score noise.
const RelevanceFloor = 0.4

// EmptyOutcome builds the degraded outcome for a source that yielded
// nothing. The answer text is the source's canned insufficiency message.
func EmptyOutcome(answerText string) *store.RetrievalOutcome {
	return &store.RetrievalOutcome{
		AnswerText: answerText,
		Confidence: EmptyConfidence,
		Empty:      true,
	}
}

// Confidence is the mean relevance of the evidence items at or above the
// relevance floor. When nothing clears the floor it falls back to the
// unfiltered mean: irrelevant low-score matches must not dilute a strong
// result, but a uniformly weak set must still report its own (low) mean
// rather than zero.
func Confidence(evidence []store.EvidenceItem) float64 {
	if len(evidence) == 0 {
		return 0
	}

	var sum float64
	var passed int
	for _, item := range evidence {
		if item.Relevance >= RelevanceFloor {
			sum += item.Relevance
			passed++
		}
	}
	if passed > 0 {
		return sum / float64(passed)
	}

	sum = 0
	for _, item := range evidence {
		sum += item.Relevance
	}
	return sum / float64(len(evidence))
}
