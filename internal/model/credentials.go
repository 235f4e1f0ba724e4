package model

import (
	"slices"
	"time"
)

// Claims are the decoded contents of a bearer token
type Claims struct {
	Type        string
	TokenID     string
	SubjectID   string
	OriginID    string
	ProfileType ProfileType
	Name        string
	Roles       []string
	ExpiresAt   time.Time
	Version     string
}

// HasRole reports whether the claims grant a role
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Expired reports whether the token expired before now.
// A zero expiry never expires.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Credentials pair a token with its decoded claims. Values are replaced
// whole, never mutated.
type Credentials struct {
	Token  string
	Claims Claims
}

// Topic returns the private subscription topic for these credentials
func (c Credentials) Topic() string {
	return UserTopic(c.Claims.SubjectID)
}
