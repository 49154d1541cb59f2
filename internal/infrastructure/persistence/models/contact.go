package models

import (
	"github.com/jewelry/backend/internal/domain/contact"
)

// ContactSubmissionModel is the persistence model for a contact form submission.
type ContactSubmissionModel struct {
	BaseModel
	Name    string         `gorm:"type:varchar(200);not null"`
	Email   string         `gorm:"type:varchar(255);not null"`
	Phone   string         `gorm:"type:varchar(50)"`
	Subject string         `gorm:"type:varchar(200)"`
	Message string         `gorm:"type:text;not null"`
	Status  contact.Status `gorm:"type:varchar(20);not null;default:'new';index"`
}

// TableName returns the table name for GORM
func (ContactSubmissionModel) TableName() string {
	return "contact_submissions"
}

// ToDomain converts the persistence model to a domain Submission entity.
func (m *ContactSubmissionModel) ToDomain() *contact.Submission {
	return &contact.Submission{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Subject:           m.Subject,
		Message:           m.Message,
		Status:            m.Status,
	}
}

// ContactSubmissionModelFromDomain creates a new persistence model from a domain Submission.
func ContactSubmissionModelFromDomain(s *contact.Submission) *ContactSubmissionModel {
	m := &ContactSubmissionModel{
		Name:    s.Name,
		Email:   s.Email,
		Phone:   s.Phone,
		Subject: s.Subject,
		Message: s.Message,
		Status:  s.Status,
	}
	m.setEntity(s.BaseEntity)
	return m
}
