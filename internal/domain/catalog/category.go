package catalog

import (
	"regexp"
	"strings"

	"github.com/jewelry/backend/internal/domain/shared"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugRegex        = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Category groups products on the storefront (rings, necklaces, ...)
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SortOrder   int
}

// NewCategory creates a category. The slug is derived from the name when empty.
func NewCategory(name, slug, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	slug, err := normalizeSlug(slug, name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Description:       strings.TrimSpace(description),
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update replaces the category's editable fields
func (c *Category) Update(name, slug, description, imageURL string, sortOrder int) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	slug, err := normalizeSlug(slug, name)
	if err != nil {
		return err
	}

	c.Name = name
	c.Slug = slug
	c.Description = strings.TrimSpace(description)
	c.ImageURL = strings.TrimSpace(imageURL)
	c.SortOrder = sortOrder
	c.Touch()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// MarkDeleted records the deletion event
func (c *Category) MarkDeleted() {
	c.AddDomainEvent(NewCategoryDeletedEvent(c))
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalidChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func normalizeSlug(slug, name string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	slug = strings.ToLower(slug)
	if !slugRegex.MatchString(slug) {
		return "", shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}
	if len(slug) > 120 {
		return "", shared.NewDomainError("INVALID_SLUG", "Slug cannot exceed 120 characters")
	}
	return slug, nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
