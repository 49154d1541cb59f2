package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// OrderCounter reports how many orders a customer placed
type OrderCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserService handles profile self-service and admin user management
type UserService struct {
	userRepo  identity.UserRepository
	orders    OrderCounter
	blacklist auth.TokenBlacklist
	jwt       *auth.JWTService
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service. Revocations use the refresh
// token lifetime so every outstanding token is covered.
func NewUserService(
	userRepo identity.UserRepository,
	orders OrderCounter,
	blacklist auth.TokenBlacklist,
	jwt *auth.JWTService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		orders:    orders,
		blacklist: blacklist,
		jwt:       jwt,
		publisher: publisher,
		logger:    logger,
	}
}

// GetProfile returns the caller's account
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile replaces the caller's profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(identity.Profile{
		FullName:   input.FullName,
		Phone:      input.Phone,
		Address:    input.Address,
		City:       input.City,
		PostalCode: input.PostalCode,
		Country:    input.Country,
	}); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword checks the current password and stores the new one
func (s *UserService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.find(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

// List returns one page of users for the admin screen
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*shared.Paginated[UserResponse], error) {
	filter := identity.UserFilter{
		Keyword:  input.Search,
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	if input.Role != "" {
		role := identity.UserRole(input.Role)
		if !role.IsValid() {
			return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+input.Role)
		}
		filter.Role = &role
	}
	if input.Status != "" {
		status := identity.UserStatus(input.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown status: "+input.Status)
		}
		filter.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	page := shared.NewPaginated(items, total, max(filter.Page, 1), filter.Limit())
	return &page, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	return s.GetProfile(ctx, id)
}

// UpdateRole changes a user's role. Admins cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role string) (*UserResponse, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot change your own role")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := user.Role
	if err := user.ChangeRole(identity.UserRole(role)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	if previous != user.Role {
		s.revokeUser(ctx, user.ID)
	}
	s.logger.Info("User role changed",
		zap.String("user_id", id.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("role", role))
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateStatus enables or disables a user. Admins cannot disable themselves.
func (s *UserService) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, status string) (*UserResponse, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot change your own status")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch identity.UserStatus(status) {
	case identity.UserStatusActive:
		err = user.Enable()
	case identity.UserStatusDisabled:
		err = user.Disable()
	default:
		err = shared.NewDomainError("INVALID_STATUS", "Unknown status: "+status)
	}
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	if user.Status == identity.UserStatusDisabled {
		s.revokeUser(ctx, user.ID)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user. Admins cannot delete themselves, and accounts
// with orders are kept so order history and numbering stay intact.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot delete your own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.orders.CountByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}
	if count > 0 {
		return identity.ErrUserHasOrders
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, identity.ErrUserHasOrders) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.revokeUser(ctx, id)

	user.AddDomainEvent(identity.NewUserDeletedEvent(user))
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()), zap.String("actor_id", actorID.String()))
	return nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *identity.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	return nil
}

// revokeUser invalidates every token issued to the user so far
func (s *UserService) revokeUser(ctx context.Context, id uuid.UUID) {
	if s.blacklist == nil || s.jwt == nil {
		return
	}
	if err := s.blacklist.RevokeUser(ctx, id.String(), s.jwt.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", id.String()), zap.Error(err))
	}
}
