package validation

import (
	"errors"
	"strings"
)

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	// Maximum length: 72 bytes (bcrypt limitation)
	// bcrypt silently truncates passwords longer than 72 bytes, which is a security risk
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	// Check for common/weak patterns
	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "123456", "qwerty", "admin", "letmein",
		"welcome", "monkey", "dragon", "master", "sunshine",
	}

	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
