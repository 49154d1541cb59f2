package models

import (
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/review"
)

// ReviewModel is the persistence model for the Review domain entity.
type ReviewModel struct {
	BaseModel
	ProductID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user,priority:1"`
	UserID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user,priority:2"`
	AuthorName string        `gorm:"type:varchar(200);not null"`
	Rating     int           `gorm:"not null"`
	Title      string        `gorm:"type:varchar(200)"`
	Comment    string        `gorm:"type:text"`
	Status     review.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review entity.
func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		BaseAggregateRoot: m.aggregateRoot(),
		ProductID:         m.ProductID,
		UserID:            m.UserID,
		AuthorName:        m.AuthorName,
		Rating:            m.Rating,
		Title:             m.Title,
		Comment:           m.Comment,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Review entity.
func (m *ReviewModel) FromDomain(r *review.Review) {
	m.setEntity(r.BaseEntity)
	m.ProductID = r.ProductID
	m.UserID = r.UserID
	m.AuthorName = r.AuthorName
	m.Rating = r.Rating
	m.Title = r.Title
	m.Comment = r.Comment
	m.Status = r.Status
}

// ReviewModelFromDomain creates a new persistence model from a domain Review entity.
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{}
	m.FromDomain(r)
	return m
}
