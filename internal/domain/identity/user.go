package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/jewelry/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole is the coarse authorization level of an account
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// IsValid reports whether the role is known
func (r UserRole) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// IsValid reports whether the status is known
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusDisabled
}

// PasswordHashCost is the bcrypt cost used for new password hashes.
// Tests lower it to bcrypt.MinCost.
var PasswordHashCost = 12

// ErrUserHasOrders refuses deleting an account that orders still point at
var ErrUserHasOrders = shared.NewDomainError("USER_HAS_ORDERS", "User has orders and cannot be deleted; disable the account instead")

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRegex = regexp.MustCompile(`[0-9]`)
	phoneRegex     = regexp.MustCompile(`^[0-9+\-() ]{5,30}$`)
)

// Profile holds the contact and shipping details a customer keeps on file
type Profile struct {
	FullName   string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// User is the aggregate root for storefront accounts
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	Profile
	Role        UserRole
	Status      UserStatus
	LastLoginAt *time.Time
	LastLoginIP string
}

// NewCustomer registers a new active customer account
func NewCustomer(email, password, fullName string) (*User, error) {
	return newUser(email, password, fullName, RoleCustomer)
}

// NewAdmin creates an active administrator account
func NewAdmin(email, password, fullName string) (*User, error) {
	return newUser(email, password, fullName, RoleAdmin)
}

func newUser(email, password, fullName string, role UserRole) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		Profile:           Profile{FullName: fullName},
		Role:              role,
		Status:            UserStatusActive,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateProfile replaces the profile fields
func (u *User) UpdateProfile(p Profile) error {
	p.FullName = strings.TrimSpace(p.FullName)
	if err := validateFullName(p.FullName); err != nil {
		return err
	}
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Phone != "" && !phoneRegex.MatchString(p.Phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}
	if len(p.Address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	u.Profile = p
	u.Touch()
	u.AddDomainEvent(NewUserUpdatedEvent(u))
	return nil
}

// ChangePassword changes the user's password after checking the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// ChangeRole sets the account role
func (u *User) ChangeRole(role UserRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	if u.Role == role {
		return nil
	}
	u.Role = role
	u.Touch()
	u.AddDomainEvent(NewUserUpdatedEvent(u))
	return nil
}

// Disable blocks the account from logging in
func (u *User) Disable() error {
	if u.Status == UserStatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "User is already disabled")
	}
	u.Status = UserStatusDisabled
	u.Touch()
	u.AddDomainEvent(NewUserUpdatedEvent(u))
	return nil
}

// Enable re-activates a disabled account
func (u *User) Enable() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.Touch()
	u.AddDomainEvent(NewUserUpdatedEvent(u))
	return nil
}

// RecordLoginSuccess stamps the last successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.UpdatedAt = now
}

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) CanLogin() bool { return u.Status == UserStatusActive }

func validateFullName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Full name cannot exceed 200 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasNumberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
