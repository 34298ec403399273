package websearch

import (
	"context"
	"fmt"
)

// Result is one ranked web snippet.
type Result struct {
	Title   string
	URL     string
	Content string
	Score   float64 // 0.0 to 1.0
}

// Provider defines the contract for any web search backend.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// NewProvider selects a web search backend by name.
func NewProvider(providerType, tavilyApiKey string) (Provider, error) {
	switch providerType {
	case "tavily":
		if tavilyApiKey == "" {
			return nil, fmt.Errorf("tavily provider requires TAVILY_API_KEY")
		}
		return NewTavilyProvider(tavilyApiKey), nil
	case "duckduckgo":
		return NewDuckDuckGoProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported web search provider: %s", providerType)
	}
}
