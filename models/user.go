// user.go - Defines the User model for the database

package models // Declares the package name

import "time"

// User is the schema used when the users table is created by migration.
// Lookups never scan into it; they return the raw Row so every column reaches the client.
type User struct { // User struct represents a user in the database
	ID        uint      `gorm:"primaryKey" json:"id"`        // Unique user ID (primary key)
	Name      string    `json:"name"`                        // Display name
	Email     string    `gorm:"index;not null" json:"email"` // Lookup key, indexed but not unique
	CreatedAt time.Time `json:"created_at"`                  // Set by GORM on insert
}
