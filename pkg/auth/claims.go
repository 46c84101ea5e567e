// Package auth provides JWT-based authentication for hourbook.
// Tokens are self-issued with HS256 by default; tokens minted by an
// external identity provider are accepted when JWKS issuers are configured.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hourbook/hourbook/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the access token claims. It embeds RegisteredClaims for
// standard JWT fields (sub, iss, exp, etc.) and adds the user's email and role.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Actor converts the claims into the domain actor used for authorization.
func (c *Claims) Actor() models.Actor {
	return models.Actor{ID: c.Subject, Role: c.Role}
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
