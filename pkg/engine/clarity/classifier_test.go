package clarity

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		question     string
		raw          string
		wantClear    bool
		wantCombined string
		wantReason   string
	}{
		{
			name:         "clear verdict",
			question:     "What is machine learning?",
			raw:          "CLEAR: specific, self-contained question",
			wantClear:    true,
			wantCombined: "What is machine learning?",
			wantReason:   "specific, self-contained question",
		},
		{
			name:         "needs clarification",
			question:     "What about the other one?",
			raw:          "NEEDS_CLARIFICATION: which item does \"the other one\" refer to?",
			wantClear:    false,
			wantCombined: "What about the other one?",
			wantReason:   "which item does \"the other one\" refer to?",
		},
		{
			name:         "combined question resolved from context",
			question:     "How does it work?",
			raw:          "COMBINED: How does machine learning work?\nCLEAR: referent resolved from prior turn",
			wantClear:    true,
			wantCombined: "How does machine learning work?",
			wantReason:   "referent resolved from prior turn",
		},
		{
			name:         "unparseable output fails open",
			question:     "Explain gradient descent",
			raw:          "The question is perfectly understandable.",
			wantClear:    true,
			wantCombined: "Explain gradient descent",
			wantReason:   "The question is perfectly understandable.",
		},
		{
			name:         "empty combined line is ignored",
			question:     "Define entropy",
			raw:          "COMBINED:\nCLEAR: fine as-is",
			wantClear:    true,
			wantCombined: "Define entropy",
			wantReason:   "fine as-is",
		},
		{
			name:         "surrounding whitespace",
			question:     "q",
			raw:          "  \n CLEAR:   trimmed  \n",
			wantClear:    true,
			wantCombined: "q",
			wantReason:   "trimmed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.question, tt.raw)

			if result.Clear != tt.wantClear {
				t.Errorf("Clear = %v, want %v", result.Clear, tt.wantClear)
			}
			if result.CombinedQuestion != tt.wantCombined {
				t.Errorf("CombinedQuestion = %q, want %q", result.CombinedQuestion, tt.wantCombined)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestClassifyPropagatesReasoningError(t *testing.T) {
	provider := &fakeLLM{err: errors.New("connection refused")}
	classifier := NewClassifier(provider, time.Second, testLogger())

	result, err := classifier.Classify(context.Background(), "What is X?", "")
	require.Error(t, err)
	assert.Nil(t, result)

	var extErr *enginerr.ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "reasoning", extErr.Service)
}

func TestClassifyAppliesSentinelContract(t *testing.T) {
	provider := &fakeLLM{response: "NEEDS_CLARIFICATION: name the specific algorithm"}
	classifier := NewClassifier(provider, time.Second, testLogger())

	result, err := classifier.Classify(context.Background(), "Why is it better?", "")
	require.NoError(t, err)
	assert.False(t, result.Clear)
	assert.Equal(t, "name the specific algorithm", result.Reason)
	assert.Equal(t, 1, provider.calls)
}
