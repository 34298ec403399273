package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearchParsesScoredResults(t *testing.T) {
	var gotReq tavilySearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"title":"Attention Is All You Need","url":"https://arxiv.org/abs/1706.03762","content":"The transformer architecture...","score":0.93},
			{"title":"Transformer overview","url":"https://example.com/tf","content":"An overview.","score":0.71}
		]}`))
	}))
	defer server.Close()

	provider := NewTavilyProvider("test-key")
	provider.BaseURL = server.URL

	results, err := provider.Search(context.Background(), "what is a transformer", 5)

	require.NoError(t, err)
	assert.Equal(t, "test-key", gotReq.ApiKey)
	assert.Equal(t, "what is a transformer", gotReq.Query)
	assert.Equal(t, 5, gotReq.MaxResults)
	require.Len(t, results, 2)
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", results[0].URL)
	assert.InDelta(t, 0.93, results[0].Score, 0.0001)
	assert.Equal(t, "An overview.", results[1].Content)
}

func TestTavilySearchSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	provider := NewTavilyProvider("bad-key")
	provider.BaseURL = server.URL

	results, err := provider.Search(context.Background(), "anything", 3)

	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "status 401")
}

func TestDuckDuckGoSearchAbstractFirstWithFlatScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go programming language", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Heading": "Go (programming language)",
			"AbstractText": "Go is a statically typed language.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Go",
			"RelatedTopics": [
				{"Text": "Goroutines are lightweight threads.", "FirstURL": "https://go.dev/tour"},
				{"Text": "", "FirstURL": "https://example.com/skipped"},
				{"Text": "Channels synchronize goroutines.", "FirstURL": "https://go.dev/channels"}
			]
		}`))
	}))
	defer server.Close()

	provider := NewDuckDuckGoProvider()
	provider.BaseURL = server.URL

	results, err := provider.Search(context.Background(), "go programming language", 5)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Go is a statically typed language.", results[0].Content)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go", results[0].URL)
	for _, r := range results {
		assert.InDelta(t, duckDuckGoFlatScore, r.Score, 0.0001)
	}
}

func TestDuckDuckGoSearchTruncatesToMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Heading": "Topic",
			"AbstractText": "Abstract answer.",
			"AbstractURL": "https://example.com/a",
			"RelatedTopics": [
				{"Text": "one", "FirstURL": "https://example.com/1"},
				{"Text": "two", "FirstURL": "https://example.com/2"},
				{"Text": "three", "FirstURL": "https://example.com/3"}
			]
		}`))
	}))
	defer server.Close()

	provider := NewDuckDuckGoProvider()
	provider.BaseURL = server.URL

	results, err := provider.Search(context.Background(), "topic", 2)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Abstract answer.", results[0].Content)
}

func TestNewProviderSelection(t *testing.T) {
	p, err := NewProvider("duckduckgo", "")
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGoProvider{}, p)

	p, err = NewProvider("tavily", "key")
	require.NoError(t, err)
	assert.IsType(t, &TavilyProvider{}, p)

	_, err = NewProvider("tavily", "")
	assert.Error(t, err)

	_, err = NewProvider("bing", "")
	assert.Error(t, err)
}
