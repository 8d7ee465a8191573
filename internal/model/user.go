// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is stored lower-cased and is UNIQUE in the users table, so it doubles
// as the login identifier. PasswordHash is a bcrypt string and is never
// serialized (json:"-"). ProfileImageURL is empty when the user never set
// one.
type User struct {
	ID              string    `json:"id"              db:"id"`
	Name            string    `json:"name"            db:"name"`
	Email           string    `json:"email"           db:"email"`
	ProfileImageURL string    `json:"profileImageUrl" db:"profile_image_url"`
	PasswordHash    string    `json:"-"               db:"password_hash"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}
