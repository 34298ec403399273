package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultDuckDuckGoBaseURL = "https://api.duckduckgo.com"

// DuckDuckGoProvider queries the DuckDuckGo Instant Answer API. It needs no
// API key but returns no relevance scores, so every result gets a flat 0.5.
type DuckDuckGoProvider struct {
	BaseURL string
	Client  *http.Client
}

var _ Provider = &DuckDuckGoProvider{}

// duckDuckGoFlatScore stands in for the missing ranking signal.
const duckDuckGoFlatScore = 0.5

func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		BaseURL: defaultDuckDuckGoBaseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type duckDuckGoResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		p.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo api error (status %d)", res.StatusCode)
	}

	var ddgRes duckDuckGoResponse
	if err := json.Unmarshal(resBytes, &ddgRes); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var results []Result

	// The abstract, when present, is the strongest answer DuckDuckGo has
	if ddgRes.AbstractText != "" {
		results = append(results, Result{
			Title:   ddgRes.Heading,
			URL:     ddgRes.AbstractURL,
			Content: ddgRes.AbstractText,
			Score:   duckDuckGoFlatScore,
		})
	}

	for _, topic := range ddgRes.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{
			Title:   topic.Text,
			URL:     topic.FirstURL,
			Content: topic.Text,
			Score:   duckDuckGoFlatScore,
		})
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
