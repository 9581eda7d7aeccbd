package service

import (
	"regexp"
	"strings"
	"unicode"
)

// Field constraints for registration.
const (
	NameMinLength     = 3
	NameMaxLength     = 20
	UsernameMaxLength = 20
	PasswordMinLength = 7

	// PasswordMinClasses is the number of character classes (lower, upper,
	// digit, symbol) a password must draw from.
	PasswordMinClasses = 3
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)
)

func validName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) >= NameMinLength && len(trimmed) <= NameMaxLength
}

func validUsername(username string) bool {
	return len(username) <= UsernameMaxLength && usernamePattern.MatchString(username)
}

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// passwordClasses counts the distinct character classes a password uses.
func passwordClasses(password string) int {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	count := 0
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			count++
		}
	}
	return count
}

func strongPassword(password string) bool {
	trimmed := strings.TrimSpace(password)
	return len(trimmed) >= PasswordMinLength && passwordClasses(trimmed) >= PasswordMinClasses
}

// PasswordStrengthScore rates a password 0-4 for UI feedback. It mirrors
// strongPassword: anything scoring 4 passes registration.
func PasswordStrengthScore(password string) int {
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return 0
	}
	if len(trimmed) < PasswordMinLength {
		return 1
	}
	switch classes := passwordClasses(trimmed); {
	case classes <= 1:
		return 2
	case classes == 2:
		return 3
	default:
		return 4
	}
}
