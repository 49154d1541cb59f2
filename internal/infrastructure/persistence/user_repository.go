package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository stores shop accounts in the users table. Emails are
// normalized before they are written, so lookups compare lower-cased.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) users(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.UserModel{})
}

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
	return duplicate(err, shared.ErrAlreadyExists)
}

// Update rewrites every column but the key and creation time, so zero
// values such as a cleared phone number are stored too.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	row := models.UserModelFromDomain(user)
	return affected(r.db.WithContext(ctx).Model(row).Select("*").Omit("id", "created_at").Updates(row))
}

// Delete fails with ErrUserHasOrders while orders reference the user
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return referenced(affected(r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)), identity.ErrUserHasOrders)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.first(r.users(ctx).Where("id = ?", id))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(r.users(ctx).Scopes(emailIs(email)))
}

func (r *GormUserRepository) first(query *gorm.DB) (*identity.User, error) {
	var row models.UserModel
	if err := query.First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

func emailIs(email string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ?", identity.NormalizeEmail(email))
	}
}

// FindAll returns one page of users and the number of users matching the
// filter across all pages.
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	query := r.users(ctx).Scopes(userFilter(filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*models.UserModel
	err := query.
		Order(userSorting.clause(filter.SortBy, filter.SortOrder)).
		Offset(filter.Offset()).Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*identity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, total, nil
}

func userFilter(f identity.UserFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
			like := "%" + kw + "%"
			db = db.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
		}
		if f.Role != nil {
			db = db.Where("role = ?", *f.Role)
		}
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		return db
	}
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	n, err := count(r.users(ctx).Scopes(emailIs(email)))
	return n > 0, err
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	return count(r.users(ctx))
}

func (r *GormUserRepository) CountByRole(ctx context.Context, role identity.UserRole) (int64, error) {
	return count(r.users(ctx).Where("role = ?", role))
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
