package domain

import "time"

// IssuedToken describes an identity token handed to a client.
type IssuedToken struct {
	Token     string
	SubjectID int64
	ExpiresAt time.Time
}
