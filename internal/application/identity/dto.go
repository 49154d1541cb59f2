package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared"
)

// RegisterInput contains the input for customer sign-up
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	IP       string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // logged, never part of the throttle key
}

// AuthResult is returned by Register, Login and RefreshToken
type AuthResult struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// LogoutInput identifies the tokens to revoke. The refresh token is optional.
type LogoutInput struct {
	UserID         uuid.UUID
	AccessTokenJTI string
	AccessExpires  time.Time
	RefreshToken   string
}

// SessionInfo describes the caller's current access token
type SessionInfo struct {
	UserID       uuid.UUID     `json:"user_id"`
	Email        string        `json:"email"`
	Role         string        `json:"role"`
	IssuedAt     time.Time     `json:"issued_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	RemainingTTL time.Duration `json:"-"`
	ExpiresIn    int64         `json:"expires_in"` // seconds
}

// UpdateProfileInput replaces the caller's profile
type UpdateProfileInput struct {
	FullName   string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ListUsersInput filters the admin user list
type ListUsersInput struct {
	Search   string
	Role     string
	Status   string
	Page     int
	PageSize int
}

// UserResponse is the public view of an account; the password hash never leaves the service
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	PostalCode  string     `json:"postal_code,omitempty"`
	Country     string     `json:"country,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToUserResponse maps a domain user to its response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Address:     u.Address,
		City:        u.City,
		PostalCode:  u.PostalCode,
		Country:     u.Country,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// LoginError is returned for rejected logins. It unwraps to the domain error
// so code-based matching keeps working.
type LoginError struct {
	*shared.DomainError
	RemainingAttempts int
	RetryAfter        time.Duration
}

func (e *LoginError) Unwrap() error { return e.DomainError }
