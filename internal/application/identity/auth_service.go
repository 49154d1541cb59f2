package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, login, token refresh and logout
type AuthService struct {
	userRepo   identity.UserRepository
	throttle   *identity.LoginThrottle
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. The blacklist and
// publisher may be nil.
func NewAuthService(
	userRepo identity.UserRepository,
	throttle *identity.LoginThrottle,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		throttle:   throttle,
		jwtService: jwtService,
		blacklist:  blacklist,
		publisher:  publisher,
		logger:     logger,
	}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewCustomer(email, input.Password, input.FullName)
	if err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := user.UpdateProfile(identity.Profile{FullName: user.FullName, Phone: input.Phone}); err != nil {
			return nil, err
		}
	}
	user.RecordLoginSuccess(input.IP)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.publish(ctx, user)

	s.logger.Info("Customer registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login verifies credentials under the login throttle
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	key := identity.ThrottleKey(input.Email)
	log := s.logger.With(zap.String("email", identity.NormalizeEmail(input.Email)), zap.String("ip", input.IP))

	status, err := s.throttle.Check(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check login throttle: %w", err)
	}
	if status.Blocked {
		log.Warn("Login blocked by throttle", zap.Duration("retry_after", status.RetryAfter))
		return nil, tooManyAttempts(status)
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.VerifyPassword(input.Password) {
		return nil, s.recordFailure(ctx, key, log)
	}

	if !user.CanLogin() {
		log.Warn("Login attempt for disabled account")
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "This account has been disabled")
	}

	if err := s.throttle.Reset(ctx, key); err != nil {
		log.Error("Failed to reset login throttle", zap.Error(err))
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Error("Failed to stamp last login", zap.Error(err))
	}

	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) recordFailure(ctx context.Context, key string, log *zap.Logger) error {
	status, err := s.throttle.RecordFailure(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	log.Warn("Invalid credentials", zap.Int("attempts", status.Attempts))
	if status.Blocked {
		return tooManyAttempts(status)
	}
	return &LoginError{
		DomainError:       shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password"),
		RemainingAttempts: status.RemainingAttempts,
	}
}

func tooManyAttempts(status identity.ThrottleStatus) error {
	minutes := int(status.RetryAfter.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return &LoginError{
		DomainError: shared.NewDomainError("TOO_MANY_ATTEMPTS",
			fmt.Sprintf("Too many failed login attempts. Try again in %d minute(s)", minutes)),
		RetryAfter: status.RetryAfter,
	}
}

// RefreshToken rotates a refresh token into a new pair. Role and email are
// reloaded so a demoted admin cannot refresh back into admin access.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("Refresh token rejected", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := auth.CheckClaims(ctx, s.blacklist, claims); err != nil {
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Account no longer exists")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "This account has been disabled")
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, tokenInput(user))
	if err != nil {
		return nil, mapTokenError(err)
	}

	// The old refresh token is single-use
	s.revoke(ctx, claims.ID, claims.GetExpiresAtTime())

	return authResult(pair, user), nil
}

// Logout revokes the access token until its natural expiry, and the refresh
// token when one is supplied.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.revoke(ctx, input.AccessTokenJTI, input.AccessExpires)

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.UserID == input.UserID.String() {
			s.revoke(ctx, claims.ID, claims.GetExpiresAtTime())
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Session describes the validated access token
func (s *AuthService) Session(claims *auth.Claims) (*SessionInfo, error) {
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid access token")
	}
	ttl := claims.GetRemainingTTL()
	return &SessionInfo{
		UserID:       userID,
		Email:        claims.Email,
		Role:         claims.Role,
		IssuedAt:     claims.GetIssuedAtTime(),
		ExpiresAt:    claims.GetExpiresAtTime(),
		RemainingTTL: ttl,
		ExpiresIn:    int64(ttl / time.Second),
	}, nil
}

func (s *AuthService) revoke(ctx context.Context, jti string, expiresAt time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	if err := s.blacklist.RevokeToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return authResult(pair, user), nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}
}

func authResult(pair *auth.TokenPair, user *identity.User) *AuthResult {
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}
}

// mapTokenError converts JWT failures to domain codes
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	}
}
