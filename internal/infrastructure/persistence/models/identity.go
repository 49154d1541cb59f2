package models

import (
	"time"

	"github.com/jewelry/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Email        string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	FullName     string              `gorm:"type:varchar(200);not null"`
	Phone        string              `gorm:"type:varchar(50)"`
	Address      string              `gorm:"type:varchar(500)"`
	City         string              `gorm:"type:varchar(100)"`
	PostalCode   string              `gorm:"type:varchar(20)"`
	Country      string              `gorm:"type:varchar(100)"`
	Role         identity.UserRole   `gorm:"type:varchar(20);not null;default:'customer';index"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
	LastLoginIP  string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.aggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Profile: identity.Profile{
			FullName:   m.FullName,
			Phone:      m.Phone,
			Address:    m.Address,
			City:       m.City,
			PostalCode: m.PostalCode,
			Country:    m.Country,
		},
		Role:        m.Role,
		Status:      m.Status,
		LastLoginAt: m.LastLoginAt,
		LastLoginIP: m.LastLoginIP,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.setEntity(u.BaseEntity)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FullName = u.FullName
	m.Phone = u.Phone
	m.Address = u.Address
	m.City = u.City
	m.PostalCode = u.PostalCode
	m.Country = u.Country
	m.Role = u.Role
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
