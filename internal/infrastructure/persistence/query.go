package persistence

import (
	"slices"
	"strings"

	"github.com/jewelry/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// sortColumns whitelists the columns a list endpoint may sort on. Client
// input never reaches ORDER BY unless it names one of them.
type sortColumns struct {
	columns  []string
	fallback string
}

// userSorting is what the admin user list accepts.
var userSorting = sortColumns{
	columns:  []string{"created_at", "updated_at", "email", "full_name", "role", "status", "last_login_at"},
	fallback: "created_at",
}

// clause builds "<column> <ASC|DESC>, id ASC". Unknown columns fall back;
// anything but asc sorts descending.
func (s sortColumns) clause(column, direction string) string {
	column = strings.TrimSpace(column)
	if !slices.Contains(s.columns, column) {
		column = s.fallback
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		dir = "ASC"
	}
	return column + " " + dir + ", id ASC"
}

// Storefront sort keys. Every clause ends on id so pages are stable.
var productOrderClauses = map[catalog.ProductSort]string{
	catalog.SortNewest:    "created_at DESC, id DESC",
	catalog.SortPriceAsc:  "price ASC, id ASC",
	catalog.SortPriceDesc: "price DESC, id ASC",
	catalog.SortName:      "name ASC, id ASC",
	catalog.SortRating:    "rating DESC, review_count DESC, id ASC",
}

// productOrder falls back to newest first.
func productOrder(sort catalog.ProductSort) string {
	if clause, ok := productOrderClauses[sort]; ok {
		return clause
	}
	return productOrderClauses[catalog.SortNewest]
}

func count(query *gorm.DB) (int64, error) {
	var n int64
	err := query.Count(&n).Error
	return n, err
}
