package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
)

// UserRepository persists shop accounts. Emails are stored normalized, so
// lookups by email ignore case.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindAll returns one page of the admin user listing and the number of
	// accounts matching the filter
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role UserRole) (int64, error)
}

// UserFilter narrows the admin user listing. Keyword matches email or full name.
type UserFilter struct {
	Keyword string
	Role    *UserRole
	Status  *UserStatus

	SortBy    string
	SortOrder string

	Page     int
	PageSize int
}

func (f UserFilter) Offset() int {
	return shared.PageOffset(f.Page, f.PageSize)
}

func (f UserFilter) Limit() int {
	return shared.PageLimit(f.PageSize)
}
