package dto

import "github.com/google/uuid"

type IngestDocumentRequest struct {
	Filename string                 `json:"filename" validate:"required"`
	Title    string                 `json:"title,omitempty"`
	Content  string                 `json:"content" validate:"required"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type IngestDocumentResponse struct {
	Id           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	PassageCount int       `json:"passage_count"`
}

type DocumentSummaryResponse struct {
	Id       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Title    string    `json:"title,omitempty"`
}

// PublishIndexPassageMessage is the payload queued for the indexer after
// a document's passages have been stored.
type PublishIndexPassageMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
