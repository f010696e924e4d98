package domain

import "time"

// User is a person who can log in and book rooms.
type User struct {
	ID           int64
	IsAdmin      bool
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
