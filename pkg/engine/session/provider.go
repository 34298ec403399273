package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/pkg/store"
)

// DefaultMaxTurns bounds how much history is folded into the prompt context.
const DefaultMaxTurns = 10

// Provider exposes per-session conversation history to the engine.
// Writes for the same session are serialized so a question turn and its
// answer turn land in order even under concurrent requests.
type Provider struct {
	turnStore contract.TurnStore
	maxTurns  int
	logger    *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProvider(turnStore contract.TurnStore, maxTurns int, logger *log.Logger) *Provider {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Provider{
		turnStore: turnStore,
		maxTurns:  maxTurns,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (p *Provider) sessionLock(sessionKey string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[sessionKey]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[sessionKey] = lock
	}
	return lock
}

// GetContext renders recent question and answer turns as alternating
// "User:" / "Assistant:" lines. Clarification and error turns are kept in
// the history but never fed back into prompts. A missing session yields
// an empty context, not an error.
func (p *Provider) GetContext(ctx context.Context, sessionKey string) (string, error) {
	turns, err := p.turnStore.ReadRecent(ctx, sessionKey, p.maxTurns)
	if err != nil {
		return "", fmt.Errorf("load session context: %w", err)
	}

	var b strings.Builder
	for _, turn := range turns {
		switch turn.Type {
		case store.TurnQuestion:
			b.WriteString("User: ")
		case store.TurnAnswer:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// RecordTurn appends a turn with a UTC timestamp. The zero Timestamp is
// filled in; a caller-provided one is preserved.
func (p *Provider) RecordTurn(ctx context.Context, sessionKey string, turn *store.Turn) error {
	lock := p.sessionLock(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	if err := p.turnStore.Append(ctx, sessionKey, turn); err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// History returns the full stored history in chronological order.
func (p *Provider) History(ctx context.Context, sessionKey string) ([]*store.Turn, error) {
	turns, err := p.turnStore.ReadRecent(ctx, sessionKey, 0)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}
	return turns, nil
}

// Clear wipes a session's history. Clearing an unknown session is a no-op.
func (p *Provider) Clear(ctx context.Context, sessionKey string) error {
	lock := p.sessionLock(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	if err := p.turnStore.Clear(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	p.logger.Printf("[SESSION] cleared history for session %s", sessionKey)
	return nil
}
