package models

import "time"

// User represents a user account. Email is the login identifier.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Fullname string `gorm:"size:150;not null" json:"fullname"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`

	// Relations
	OwnedBoards []Board       `gorm:"foreignKey:OwnerID" json:"owned_boards,omitempty"`
	Memberships []BoardMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
