// Package domain contains the core data types and rules for the trip journal.
// This package has no dependencies on other internal packages and is imported
// by every other layer (repo, service, handler).
package domain

import "time"

// User is an account in the trip journal. Email is the identity — users are
// created at registration and never deleted by the application.
type User struct {
	Email            string
	Name             string
	PasswordHash     string // bcrypt
	FirstName        string // optional, empty when never set
	LastName         string // optional, empty when never set
	ProfileImagePath string // optional path into the image store
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
