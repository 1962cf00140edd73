package validation

import (
	"net/mail"
)

// ValidateEmail checks length and RFC 5322 syntax.
func ValidateEmail(email string) error {
	if email == "" {
		return newError("email", "Email address is required")
	}

	// RFC 5321 path limit
	if len(email) > 254 {
		return newError("email", "Email address is too long (max 254 characters)")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return newError("email", "Invalid email address format")
	}

	return nil
}
