package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/utils"

	"github.com/google/uuid"
)

// Chunking geometry for ingested documents.
// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars.
const (
	passageChunkSize = 1500
	passageOverlap   = 200
)

type ICorpusService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Delete(ctx context.Context, documentId uuid.UUID) error
	List(ctx context.Context) ([]*dto.DocumentSummaryResponse, error)
}

type corpusService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewCorpusService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) ICorpusService {
	return &corpusService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

// Ingest stores a document and its chunked passages, then queues the
// embedding work. Passages are written without embeddings; the indexer
// fills them in asynchronously.
func (c *corpusService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	hash := sha256.Sum256([]byte(req.Content))
	document := entity.Document{
		Id:          uuid.New(),
		Filename:    req.Filename,
		Title:       req.Title,
		ContentHash: hex.EncodeToString(hash[:]),
		Metadata:    req.Metadata,
		CreatedAt:   time.Now(),
	}

	chunks := utils.SplitText(req.Content, passageChunkSize, passageOverlap)

	passages := make([]*entity.Passage, len(chunks))
	for i, chunk := range chunks {
		passages[i] = &entity.Passage{
			Id:         uuid.New(),
			DocumentId: document.Id,
			Content:    chunk,
			ChunkIndex: i,
			Metadata:   map[string]interface{}{"filename": req.Filename},
			CreatedAt:  time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}
	if err := uow.PassageRepository().CreateBulk(ctx, passages); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishIndexPassageMessage{
		DocumentId: document.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	// Event is auxiliary; log and keep going on failure
	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_INGESTED",
			Data: map[string]interface{}{
				"document_id": document.Id,
				"filename":    document.Filename,
				"passages":    len(passages),
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("CORPUS", "failed to publish DOCUMENT_INGESTED event", map[string]interface{}{
				"document_id": document.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	return &dto.IngestDocumentResponse{
		Id:           document.Id,
		Filename:     document.Filename,
		PassageCount: len(passages),
	}, nil
}

// Delete removes a document and all its passages in one transaction.
func (c *corpusService) Delete(ctx context.Context, documentId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.PassageRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_DELETED",
			Data: map[string]interface{}{
				"document_id": documentId,
				"filename":    document.Filename,
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("CORPUS", "failed to publish DOCUMENT_DELETED event", map[string]interface{}{
				"document_id": documentId.String(),
				"error":       err.Error(),
			})
		}
	}

	return nil
}

func (c *corpusService) List(ctx context.Context) ([]*dto.DocumentSummaryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	result := make([]*dto.DocumentSummaryResponse, 0, len(documents))
	for _, d := range documents {
		result = append(result, &dto.DocumentSummaryResponse{
			Id:       d.Id,
			Filename: d.Filename,
			Title:    d.Title,
		})
	}
	return result, nil
}
