package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// TokenPair is what login, register and refresh hand back to the client.
// The access token expiry doubles as the session expiry.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// GenerateTokenInput is the identity a pair is issued for
type GenerateTokenInput struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 tokens for shop sessions.
type JWTService struct {
	keys            map[TokenType]signingKey
	issuer          string
	maxRefreshCount int
	now             func() time.Time
}

// NewJWTService builds the service from config. An empty refresh secret
// falls back to the access secret.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		keys: map[TokenType]signingKey{
			TokenTypeAccess:  {secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
			TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		},
		issuer:          cfg.Issuer,
		maxRefreshCount: cfg.MaxRefreshCount,
		now:             time.Now,
	}
}

// GenerateTokenPair starts a new session.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issuePair(input, 0)
}

// RefreshTokenPair rotates a session. claims must come from
// ValidateRefreshToken; input carries the user's current email and role.
func (s *JWTService) RefreshTokenPair(claims *Claims, input GenerateTokenInput) (*TokenPair, error) {
	switch {
	case claims.TokenType != TokenTypeRefresh:
		return nil, ErrInvalidTokenType
	case claims.UserID != input.UserID.String():
		return nil, ErrInvalidClaims
	case claims.RefreshCount >= s.maxRefreshCount:
		return nil, ErrMaxRefreshExceeded
	}
	return s.issuePair(input, claims.RefreshCount+1)
}

func (s *JWTService) issuePair(input GenerateTokenInput, refreshCount int) (*TokenPair, error) {
	now := s.now()

	access, accessExp, err := s.sign(TokenTypeAccess, now, Claims{
		UserID: input.UserID.String(),
		Email:  input.Email,
		Role:   input.Role,
	})
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(TokenTypeRefresh, now, Claims{
		UserID:       input.UserID.String(),
		RefreshCount: refreshCount,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(kind TokenType, now time.Time, claims Claims) (string, time.Time, error) {
	key := s.keys[kind]
	expiresAt := now.Add(key.ttl)

	claims.TokenType = kind
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{s.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(key.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, TokenTypeRefresh)
}

func (s *JWTService) verify(tokenString string, kind TokenType) (*Claims, error) {
	secret := s.keys[kind].secret
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return secret, nil
		},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.issuer),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidClaims
	case claims.TokenType != kind:
		return nil, ErrInvalidTokenType
	case claims.UserID == "":
		return nil, ErrMissingUserID
	}
	return claims, nil
}

func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.keys[TokenTypeAccess].ttl
}

func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.keys[TokenTypeRefresh].ttl
}
