package handler

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for customer sign-up
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	FullName string `json:"full_name" binding:"required,min=1,max=120"`
	Phone    string `json:"phone" binding:"omitempty,max=40,phone"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest replaces the caller's profile fields
type UpdateProfileRequest struct {
	FullName   string `json:"full_name" binding:"required,min=1,max=120"`
	Phone      string `json:"phone" binding:"omitempty,max=40,phone"`
	Address    string `json:"address" binding:"max=300"`
	City       string `json:"city" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// =====================
// Auth Response DTOs
// =====================

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
