package memory

import (
	"context"
	"sync"
	"time"

	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// TurnStore keeps session histories in process memory. Used when no Redis
// is configured, mainly for local development and tests.
type TurnStore struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewTurnStore() contract.TurnStore {
	// Histories expire a day after the last write, purged every 10 minutes
	c := cache.New(24*time.Hour, 10*time.Minute)
	return &TurnStore{cache: c}
}

func (s *TurnStore) Append(ctx context.Context, sessionKey string, turn *store.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var turns []*store.Turn
	if x, found := s.cache.Get(sessionKey); found {
		turns = x.([]*store.Turn)
	}
	turns = append(turns, turn)
	s.cache.Set(sessionKey, turns, cache.DefaultExpiration)
	return nil
}

func (s *TurnStore) ReadRecent(ctx context.Context, sessionKey string, limit int) ([]*store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, found := s.cache.Get(sessionKey)
	if !found {
		return nil, nil
	}
	turns := x.([]*store.Turn)
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]*store.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *TurnStore) Clear(ctx context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(sessionKey)
	return nil
}
