package service

import (
	"context"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/engine"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/store"
)

// QuestionOrchestrator is the engine surface the chat service needs.
type QuestionOrchestrator interface {
	Ask(ctx context.Context, sessionKey, question string) (*engine.Result, error)
}

// SessionManager covers session maintenance outside the ask flow.
type SessionManager interface {
	Clear(ctx context.Context, sessionKey string) error
	History(ctx context.Context, sessionKey string) ([]*store.Turn, error)
}

type IChatService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	ClearSession(ctx context.Context, sessionId string) error
	History(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
}

type chatService struct {
	orchestrator   QuestionOrchestrator
	sessions       SessionManager
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	orchestrator QuestionOrchestrator,
	sessions SessionManager,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		orchestrator:   orchestrator,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
	}
}

func (c *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	result, err := c.orchestrator.Ask(ctx, req.SessionId, req.Question)
	if err != nil {
		if result == nil {
			// Invalid input, let the error handler render it
			return nil, err
		}
		// The engine already produced a safe answer for the user; surface
		// that instead of a bare 5xx.
		c.logger.Warn("CHAT", "engine degraded to safe answer", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
	}

	response := &dto.AskResponse{
		SessionId:          req.SessionId,
		Answer:             result.Answer,
		Confidence:         result.Confidence,
		Route:              string(result.EffectiveRoute),
		NeedsClarification: result.NeedsClarification,
		Sources:            mapSources(result.Sources),
		UsedCorpus:         result.UsedCorpus,
		UsedWeb:            result.UsedWeb,
		CorpusConfidence:   result.CorpusConfidence,
		WebConfidence:      result.WebConfidence,
	}

	// Event is auxiliary; failures must not break the reply
	if c.eventPublisher != nil && err == nil {
		evt := events.BaseEvent{
			Type: "CHAT_ANSWERED",
			Data: map[string]interface{}{
				"session_id": req.SessionId,
				"route":      string(result.EffectiveRoute),
				"confidence": result.Confidence,
			},
			OccurredAt: time.Now(),
		}
		if pubErr := c.eventPublisher.Publish(ctx, evt); pubErr != nil {
			c.logger.Warn("CHAT", "failed to publish CHAT_ANSWERED event", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      pubErr.Error(),
			})
		}
	}

	return response, nil
}

func (c *chatService) ClearSession(ctx context.Context, sessionId string) error {
	return c.sessions.Clear(ctx, sessionId)
}

func (c *chatService) History(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	turns, err := c.sessions.History(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	turnDTOs := make([]dto.TurnDTO, 0, len(turns))
	for _, t := range turns {
		turnDTOs = append(turnDTOs, dto.TurnDTO{
			Type:       t.Type,
			Text:       t.Text,
			Timestamp:  t.Timestamp,
			Attributes: t.Attributes,
		})
	}

	return &dto.SessionHistoryResponse{
		SessionId: sessionId,
		Turns:     turnDTOs,
	}, nil
}

func mapSources(evidence []store.EvidenceItem) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, 0, len(evidence))
	for _, item := range evidence {
		sources = append(sources, dto.SourceDTO{
			Source:     item.Source,
			Filename:   item.Locator.Filename,
			ChunkIndex: item.Locator.ChunkIndex,
			Title:      item.Locator.Title,
			URL:        item.Locator.URL,
			Relevance:  item.Relevance,
		})
	}
	return sources
}
