package services

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordRunes = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var ErrWeakPassword = errors.New("weak password")

// ValidatePasswordStrength wraps ErrWeakPassword with the first rule the
// password breaks so the caller can show it.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return fmt.Errorf("%w: use at least %d characters", ErrWeakPassword, minPasswordRunes)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: use at most %d bytes", ErrWeakPassword, maxPasswordBytes)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		hasUpper = hasUpper || unicode.IsUpper(char)
		hasLower = hasLower || unicode.IsLower(char)
		hasDigit = hasDigit || unicode.IsDigit(char)
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("%w: add an upper-case letter", ErrWeakPassword)
	case !hasLower:
		return fmt.Errorf("%w: add a lower-case letter", ErrWeakPassword)
	case !hasDigit:
		return fmt.Errorf("%w: add a digit", ErrWeakPassword)
	}
	return nil
}
