package dto

import "time"

type AskRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Question  string `json:"question" validate:"required"`
}

type SourceDTO struct {
	Source     string  `json:"source"` // "corpus" | "web"
	Filename   string  `json:"filename,omitempty"`
	ChunkIndex int     `json:"chunk_index,omitempty"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Relevance  float64 `json:"relevance"`
}

type AskResponse struct {
	SessionId          string      `json:"session_id"`
	Answer             string      `json:"answer"`
	Confidence         float64     `json:"confidence"`
	Route              string      `json:"route,omitempty"`
	NeedsClarification bool        `json:"needs_clarification"`
	Sources            []SourceDTO `json:"sources,omitempty"`
	UsedCorpus         bool        `json:"used_corpus"`
	UsedWeb            bool        `json:"used_web"`
	CorpusConfidence   float64     `json:"corpus_confidence,omitempty"`
	WebConfidence      float64     `json:"web_confidence,omitempty"`
}

type ClearSessionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}

type TurnDTO struct {
	Type       string                 `json:"type"`
	Text       string                 `json:"text"`
	Timestamp  time.Time              `json:"timestamp"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type SessionHistoryResponse struct {
	SessionId string    `json:"session_id"`
	Turns     []TurnDTO `json:"turns"`
}
