package store

import "time"

// Source of an evidence item
const (
	SourceCorpus = "corpus"
	SourceWeb    = "web"
)

// Turn types recorded in session history
const (
	TurnQuestion      = "question"
	TurnAnswer        = "answer"
	TurnClarification = "clarification"
	TurnError         = "error"
)

// Turn is one recorded event in a conversation. Immutable once appended.
type Turn struct {
	Type       string                 `json:"type"`
	Text       string                 `json:"text"`
	Timestamp  time.Time              `json:"timestamp"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Locator points back at where an evidence item came from.
// Corpus items carry DocumentID/Filename/ChunkIndex, web items Title/URL.
type Locator struct {
	DocumentID string `json:"document_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
}

// EvidenceItem is one piece of retrieved supporting content with its
// relevance score. Produced by a retrieval step, consumed only by synthesis.
type EvidenceItem struct {
	Source    string  `json:"source"`
	Content   string  `json:"content"`
	Relevance float64 `json:"relevance"` // 0.0 to 1.0
	Locator   Locator `json:"locator"`
}

// RetrievalOutcome is the scored answer-with-evidence a retrieval step
// produces. Empty is true iff no search result cleared the minimum yield.
type RetrievalOutcome struct {
	AnswerText string
	Evidence   []EvidenceItem
	Confidence float64 // 0.0 to 1.0
	Empty      bool
}

// Route is the chosen knowledge-source strategy for a question.
type Route string

const (
	RouteCorpus Route = "CORPUS"
	RouteWeb    Route = "WEB"
	RouteBoth   Route = "BOTH"

	// RouteCorpusWithWebFallback is recorded when the fallback controller
	// escalated to web search after an insufficient CORPUS-only result.
	// Kept distinct from RouteBoth so the escalation stays auditable.
	RouteCorpusWithWebFallback Route = "CORPUS_WITH_WEB_FALLBACK"
)

// RouteDecision carries the selected route and a human-readable
// justification. Never mutated after creation.
type RouteDecision struct {
	Route  Route
	Reason string
}

// PassageResult is one scored passage returned by the corpus search service.
type PassageResult struct {
	Content    string
	DocumentID string
	Filename   string
	ChunkIndex int
	Score      float64 // cosine similarity, 0.0 to 1.0
}
