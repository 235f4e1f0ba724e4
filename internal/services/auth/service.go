package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/ccpubsub/internal/dependencies/clock"
	"github.com/mcoot/ccpubsub/internal/dependencies/random"
	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/services/credentials"
)

// Config holds configuration for the token issuer
type Config struct {
	// SigningKey signs and verifies HS256 tokens
	SigningKey string
	// TokenDuration is how long an issued token stays valid
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SigningKey:    "ccmock-development-key",
		TokenDuration: 24 * time.Hour,
	}
}

// Service issues and verifies bearer tokens for the mock service
type Service struct {
	clock    clock.Clock
	random   random.Random
	key      []byte
	duration time.Duration
}

// New creates a new auth Service
func New(clk clock.Clock, rnd random.Random, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.SigningKey == "" {
		cfg.SigningKey = defaults.SigningKey
	}
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = defaults.TokenDuration
	}
	return &Service{
		clock:    clk,
		random:   rnd,
		key:      []byte(cfg.SigningKey),
		duration: cfg.TokenDuration,
	}
}

// Issue mints a token for a subject. An empty subjectID gets a fresh one.
func (s *Service) Issue(subjectID, name string) (string, model.Claims, error) {
	if subjectID == "" {
		subjectID = s.random.NewID()
	}
	now := s.clock.Now()

	claims := jwt.MapClaims{
		"type":        "user",
		"jti":         s.random.NewID(),
		"ccUID":       subjectID,
		"originID":    "mock-" + subjectID,
		"profileType": string(model.ProfileTwitch),
		"name":        name,
		"roles":       []string{},
		"iat":         now.Unix(),
		"exp":         now.Add(s.duration).Unix(),
		"ver":         "1",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", model.Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}

	decoded, err := credentials.Decode(token)
	if err != nil {
		return "", model.Claims{}, err
	}
	return token, decoded, nil
}

// Verify checks a token's signature and expiry and returns its claims
func (s *Service) Verify(token string) (model.Claims, error) {
	_, err := jwt.Parse(token, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Claims{}, errors.Join(model.ErrInvalidToken, err)
	}

	claims, err := credentials.Decode(token)
	if err != nil {
		return model.Claims{}, errors.Join(model.ErrInvalidToken, err)
	}
	if claims.SubjectID == "" {
		return model.Claims{}, fmt.Errorf("%w: missing subject", model.ErrInvalidToken)
	}
	return claims, nil
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.key, nil
}
