package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart. They are signed with
// different secrets when a refresh secret is configured.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the shop's JWT payload. Refresh tokens leave Email and Role
// empty so a role change takes effect on the next refresh.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// GetIssuedAtTime returns the zero time when iat is absent.
func (c *Claims) GetIssuedAtTime() time.Time {
	return numericTime(c.IssuedAt)
}

// GetExpiresAtTime returns the zero time when exp is absent.
func (c *Claims) GetExpiresAtTime() time.Time {
	return numericTime(c.ExpiresAt)
}

// GetRemainingTTL is how long the token stays usable, never negative.
func (c *Claims) GetRemainingTTL() time.Duration {
	exp := c.GetExpiresAtTime()
	if exp.IsZero() {
		return 0
	}
	return max(time.Until(exp), 0)
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
