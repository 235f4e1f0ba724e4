package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/storage"
)

// Store holds the current credentials. It starts empty, is populated from
// the token store on Load, and is replaced whole on Set.
type Store struct {
	tokens storage.TokenStore
	logger *slog.Logger

	mu      sync.RWMutex
	current *model.Credentials
}

// New creates an empty Store backed by a token store
func New(tokens storage.TokenStore, logger *slog.Logger) *Store {
	return &Store{
		tokens: tokens,
		logger: logger.With(slog.String("component", "credentials")),
	}
}

// Load reads a previously saved token. A missing token is not an error and
// leaves the store empty; so does a token that fails to decode, which is
// reported as ErrDecode.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			s.logger.Debug("no stored token")
			return nil
		}
		return fmt.Errorf("failed to load token: %w", err)
	}
	token = strings.TrimSpace(token)

	claims, err := Decode(token)
	if err != nil {
		return err
	}

	s.replace(model.Credentials{Token: token, Claims: claims})
	s.logger.Info("loaded stored credentials",
		slog.String("subject_id", claims.SubjectID),
		slog.String("name", claims.Name))
	return nil
}

// Set decodes a new token, replaces the current credentials with it and
// persists it. A malformed token fails with ErrDecode and changes nothing.
// If persisting fails the new credentials stay in effect for this run and
// the error wraps ErrPersist. Surrounding whitespace is trimmed once, so
// the token held, saved and later loaded is the same string.
func (s *Store) Set(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	claims, err := Decode(token)
	if err != nil {
		return err
	}

	s.replace(model.Credentials{Token: token, Claims: claims})

	if err := s.tokens.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersist, err)
	}
	return nil
}

// Clear forgets the current credentials and deletes the saved token
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return s.tokens.DeleteToken(ctx)
}

// Current returns the credentials, if any
func (s *Store) Current() (model.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.Credentials{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether credentials are present
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *Store) replace(creds model.Credentials) {
	s.mu.Lock()
	s.current = &creds
	s.mu.Unlock()
}
