package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenOptions describe the claims of a test token
type TokenOptions struct {
	SubjectID string
	Name      string
	Roles     []string
	ExpiresAt time.Time
}

// Token mints an HS256 token carrying the claims the service issues.
// Clients never verify the signature, so the key is arbitrary.
func Token(t testing.TB, opts TokenOptions) string {
	t.Helper()

	if opts.SubjectID == "" {
		opts.SubjectID = "user-1"
	}
	if opts.Name == "" {
		opts.Name = "Test User"
	}
	if opts.ExpiresAt.IsZero() {
		opts.ExpiresAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	roles := opts.Roles
	if roles == nil {
		roles = []string{}
	}

	claims := jwt.MapClaims{
		"type":        "user",
		"jti":         "jti-" + opts.SubjectID,
		"ccUID":       opts.SubjectID,
		"originID":    "origin-" + opts.SubjectID,
		"profileType": "twitch",
		"name":        opts.Name,
		"roles":       roles,
		"exp":         opts.ExpiresAt.Unix(),
		"ver":         "1",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("minting test token: %v", err)
	}
	return token
}
