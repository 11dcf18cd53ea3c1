package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migrate runs the schema migration for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Board{},
		&BoardMember{},
		&Task{},
		&Comment{},
	)
}

// EnsureGuestUser creates the reusable guest account if it is missing.
// Keyed on the unique email, so repeated invocations are no-ops.
func EnsureGuestUser(db *gorm.DB, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	guest := User{
		Email:        email,
		Fullname:     "Guest",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	return db.Where("email = ?", email).FirstOrCreate(&guest).Error
}
