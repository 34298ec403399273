package memory

import (
	"context"
	"testing"
	"time"

	"ai-docchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(turnType, text string) *store.Turn {
	return &store.Turn{Type: turnType, Text: text, Timestamp: time.Now().UTC()}
}

func TestTurnStoreAppendAndReadChronological(t *testing.T) {
	s := NewTurnStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "sess-1", turn(store.TurnQuestion, "first")))
	require.NoError(t, s.Append(ctx, "sess-1", turn(store.TurnAnswer, "second")))
	require.NoError(t, s.Append(ctx, "sess-1", turn(store.TurnQuestion, "third")))

	turns, err := s.ReadRecent(ctx, "sess-1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[0].Text)
	assert.Equal(t, "third", turns[2].Text)
}

func TestTurnStoreReadRecentKeepsNewestTurns(t *testing.T) {
	s := NewTurnStore()
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Append(ctx, "sess-1", turn(store.TurnQuestion, text)))
	}

	turns, err := s.ReadRecent(ctx, "sess-1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "c", turns[0].Text)
	assert.Equal(t, "d", turns[1].Text)
}

func TestTurnStoreSessionsAreIsolated(t *testing.T) {
	s := NewTurnStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "sess-1", turn(store.TurnQuestion, "one")))
	require.NoError(t, s.Append(ctx, "sess-2", turn(store.TurnQuestion, "two")))

	turns, err := s.ReadRecent(ctx, "sess-2", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "two", turns[0].Text)
}

func TestTurnStoreClearIsIdempotent(t *testing.T) {
	s := NewTurnStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "sess-1", turn(store.TurnQuestion, "one")))
	require.NoError(t, s.Clear(ctx, "sess-1"))
	require.NoError(t, s.Clear(ctx, "sess-1"))

	turns, err := s.ReadRecent(ctx, "sess-1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
