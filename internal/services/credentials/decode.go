package credentials

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/ccpubsub/internal/model"
)

// tokenClaims mirrors the JSON claims the service puts in its tokens
type tokenClaims struct {
	jwt.RegisteredClaims
	Type        string   `json:"type"`
	SubjectID   string   `json:"ccUID"`
	OriginID    string   `json:"originID"`
	ProfileType string   `json:"profileType"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	Version     string   `json:"ver"`
}

// Decode extracts the claims from a token without verifying its signature.
// The service is the only party that verifies tokens; the client only
// needs to read them.
func Decode(token string) (model.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Claims{}, fmt.Errorf("%w: empty token", model.ErrDecode)
	}

	var parsed tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &parsed); err != nil {
		return model.Claims{}, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}

	claims := model.Claims{
		Type:        parsed.Type,
		TokenID:     parsed.ID,
		SubjectID:   parsed.SubjectID,
		OriginID:    parsed.OriginID,
		ProfileType: model.ProfileType(parsed.ProfileType),
		Name:        parsed.Name,
		Roles:       parsed.Roles,
		Version:     parsed.Version,
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}
