package route

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"ai-docchat-be/pkg/engine/enginerr"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantRoute  store.Route
		wantReason string
	}{
		{
			name:       "corpus sentinel",
			raw:        "CORPUS: the question targets ingested papers",
			wantRoute:  store.RouteCorpus,
			wantReason: "the question targets ingested papers",
		},
		{
			name:       "web sentinel",
			raw:        "WEB: asks about current events",
			wantRoute:  store.RouteWeb,
			wantReason: "asks about current events",
		},
		{
			name:       "both sentinel",
			raw:        "BOTH: needs paper findings plus recent context",
			wantRoute:  store.RouteBoth,
			wantReason: "needs paper findings plus recent context",
		},
		{
			name:       "unparseable defaults to corpus",
			raw:        "I think the documents are the best bet here.",
			wantRoute:  store.RouteCorpus,
			wantReason: DefaultReason,
		},
		{
			name:       "empty response defaults to corpus",
			raw:        "",
			wantRoute:  store.RouteCorpus,
			wantReason: DefaultReason,
		},
		{
			name:       "leading whitespace before sentinel",
			raw:        "  WEB: tutorials live on the web",
			wantRoute:  store.RouteWeb,
			wantReason: "tutorials live on the web",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Parse(tt.raw)

			if decision.Route != tt.wantRoute {
				t.Errorf("Route = %s, want %s", decision.Route, tt.wantRoute)
			}
			if decision.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", decision.Reason, tt.wantReason)
			}
		})
	}
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestRoutePropagatesReasoningError(t *testing.T) {
	selector := NewSelector(&fakeLLM{err: errors.New("timeout")}, time.Second, log.New(os.Stderr, "", 0))

	decision, err := selector.Route(context.Background(), "What is X?", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if decision != nil {
		t.Errorf("decision = %+v, want nil", decision)
	}

	var extErr *enginerr.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("error type = %T, want *enginerr.ExternalServiceError", err)
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	in := strings.Repeat("é", 10)

	got := truncate(in, 4)
	if want := "éééé..."; got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}

	if got := truncate("short", 80); got != "short" {
		t.Errorf("truncate = %q, want input unchanged", got)
	}
}
