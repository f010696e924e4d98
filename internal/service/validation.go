package service

import (
	"net/mail"
	"strings"

	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	// reject display-name forms like "Ann <ann@x.io>"
	return err == nil && addr.Address == email
}

// validateIdentity checks the fields shared by registration and admin user creation.
func validateIdentity(firstName, lastName, email, password string) (string, string, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = normalizeEmail(email)

	fieldErrs := map[string]any{}
	if firstName == "" {
		fieldErrs["first_name"] = "required"
	}
	if lastName == "" {
		fieldErrs["last_name"] = "required"
	}
	if !validEmail(email) {
		fieldErrs["email"] = "must be a valid email address"
	}
	if password == "" {
		fieldErrs["password"] = "required"
	}
	if len(fieldErrs) > 0 {
		return "", "", "", apperrors.NewValidationError("invalid user", fieldErrs)
	}
	return firstName, lastName, email, nil
}
