package shared

const (
	// DefaultPageSize applies when a listing asks for no size
	DefaultPageSize = 20
	// MaxPageSize caps every listing
	MaxPageSize = 100
)

// PageLimit clamps a requested page size into [1, MaxPageSize].
func PageLimit(pageSize int) int {
	switch {
	case pageSize <= 0:
		return DefaultPageSize
	case pageSize > MaxPageSize:
		return MaxPageSize
	default:
		return pageSize
	}
}

// PageOffset is the number of rows before a 1-based page.
func PageOffset(page, pageSize int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * PageLimit(pageSize)
}

// Paginated is one page of a listing plus the totals the storefront
// needs to draw its pager.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
