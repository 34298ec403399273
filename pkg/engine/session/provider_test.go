package session

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(maxTurns int) *Provider {
	return NewProvider(memory.NewTurnStore(), maxTurns, log.New(os.Stderr, "", 0))
}

func TestGetContextRendersConversation(t *testing.T) {
	p := newTestProvider(0)
	ctx := context.Background()

	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnQuestion, Text: "What is attention?"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnAnswer, Text: "A weighting mechanism."}))

	got, err := p.GetContext(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "User: What is attention?\nAssistant: A weighting mechanism.", got)
}

func TestGetContextSkipsNonConversationTurns(t *testing.T) {
	p := newTestProvider(0)
	ctx := context.Background()

	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnQuestion, Text: "Which one?"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnClarification, Text: "Which framework do you mean?"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnError, Text: "upstream failure"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnAnswer, Text: "Fiber."}))

	got, err := p.GetContext(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "User: Which one?\nAssistant: Fiber.", got)
}

func TestGetContextUnknownSessionIsEmpty(t *testing.T) {
	p := newTestProvider(0)

	got, err := p.GetContext(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetContextHonorsMaxTurns(t *testing.T) {
	p := newTestProvider(2)
	ctx := context.Background()

	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnQuestion, Text: "old question"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnAnswer, Text: "old answer"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnQuestion, Text: "new question"}))
	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnAnswer, Text: "new answer"}))

	got, err := p.GetContext(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "User: new question\nAssistant: new answer", got)
}

func TestRecordTurnStampsUTC(t *testing.T) {
	p := newTestProvider(0)
	ctx := context.Background()

	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnQuestion, Text: "q"}))

	turns, err := p.History(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.False(t, turns[0].Timestamp.IsZero())
	assert.Equal(t, time.UTC, turns[0].Timestamp.Location())
}

func TestRecordTurnConcurrentSessionsDoNotInterleave(t *testing.T) {
	p := newTestProvider(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.RecordTurn(ctx, "sess-a", &store.Turn{Type: store.TurnQuestion, Text: "q"})
			_ = p.RecordTurn(ctx, "sess-b", &store.Turn{Type: store.TurnAnswer, Text: "a"})
		}()
	}
	wg.Wait()

	a, err := p.History(ctx, "sess-a")
	require.NoError(t, err)
	b, err := p.History(ctx, "sess-b")
	require.NoError(t, err)
	assert.Len(t, a, 20)
	assert.Len(t, b, 20)
}

func TestClearThenHistoryIsEmpty(t *testing.T) {
	p := newTestProvider(0)
	ctx := context.Background()

	require.NoError(t, p.RecordTurn(ctx, "sess-1", &store.Turn{Type: store.TurnQuestion, Text: "q"}))
	require.NoError(t, p.Clear(ctx, "sess-1"))
	require.NoError(t, p.Clear(ctx, "sess-1"))

	turns, err := p.History(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
