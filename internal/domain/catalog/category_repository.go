package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository persists categories. Lookups return shared.ErrNotFound
// when nothing matches.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindAll lists every category by sort order, then name.
	FindAll(ctx context.Context) ([]*Category, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsBySlug ignores the category with excludeID so a rename can keep
	// its own slug.
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}
