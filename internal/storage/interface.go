package storage

import (
	"context"
)

// TokenStore persists the single credential token a client runs with.
// Implementations return model.ErrTokenNotFound when nothing is stored.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}
