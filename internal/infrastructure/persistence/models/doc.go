// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by uuid-keyed tables
//   - identity.go: users
//   - catalog.go: products, categories and the lookup tables
//   - trade.go: orders and order_items (integer keys)
//   - review.go, contact.go: reviews and contact_submissions
//   - types.go: column types (StringList)
package models
