package contract

import (
	"context"

	"ai-docchat-be/pkg/store"
)

type TurnStore interface {
	Append(ctx context.Context, sessionKey string, turn *store.Turn) error
	ReadRecent(ctx context.Context, sessionKey string, limit int) ([]*store.Turn, error)
	Clear(ctx context.Context, sessionKey string) error
}
