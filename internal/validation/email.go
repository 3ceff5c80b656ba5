package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks the address with the stdlib RFC 5322 parser. The
// service never constructs display-name forms, so a bare address is all
// that's accepted downstream.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321 caps the whole address at 254 octets
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}

	return nil
}
