package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

// Session histories expire a day after the last turn.
const turnTTL = 24 * time.Hour

type RedisTurnStoreImpl struct {
	client *redis.Client
}

func NewRedisTurnStore(client *redis.Client) contract.TurnStore {
	return &RedisTurnStoreImpl{client: client}
}

func historyKey(sessionKey string) string {
	return "history:" + sessionKey
}

func (r *RedisTurnStoreImpl) Append(ctx context.Context, sessionKey string, turn *store.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := historyKey(sessionKey)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.Expire(ctx, key, turnTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// ReadRecent returns up to limit most recent turns in chronological order.
// A non-positive limit returns the whole history.
func (r *RedisTurnStoreImpl) ReadRecent(ctx context.Context, sessionKey string, limit int) ([]*store.Turn, error) {
	end := int64(-1)
	if limit > 0 {
		end = int64(limit) - 1
	}

	raw, err := r.client.LRange(ctx, historyKey(sessionKey), 0, end).Result()
	if err != nil {
		return nil, fmt.Errorf("read turns: %w", err)
	}

	// LPUSH stores newest first; walk backwards to restore chronology.
	turns := make([]*store.Turn, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var turn store.Turn
		if err := json.Unmarshal([]byte(raw[i]), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		turns = append(turns, &turn)
	}
	return turns, nil
}

func (r *RedisTurnStoreImpl) Clear(ctx context.Context, sessionKey string) error {
	if err := r.client.Del(ctx, historyKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}
