package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds freshly ingested passages in the background.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexPassageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing passages for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	pending, err := uow.PassageRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: payload.DocumentId},
		specification.WithoutEmbedding{},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to load passages for document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if len(pending) == 0 {
		log.Printf("[INFO] No unembedded passages for document %s", payload.DocumentId)
		msg.Ack() // Document deleted or already indexed? Ack.
		return
	}

	embedded := 0
	for _, passage := range pending {
		res, err := cs.embeddingProvider.Generate(passage.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", passage.ChunkIndex, payload.DocumentId, err)
			msg.Nack()
			return
		}

		passage.Embedding = res.Values
		if err := uow.PassageRepository().Update(ctx, passage); err != nil {
			log.Printf("[ERROR] Failed to store embedding for chunk %d of document %s: %v", passage.ChunkIndex, payload.DocumentId, err)
			msg.Nack()
			return
		}
		embedded++
	}

	log.Printf("[SUCCESS] Document indexed: %d chunks for DocumentId: %s", embedded, payload.DocumentId)
	msg.Ack()
}
