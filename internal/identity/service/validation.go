package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes; longer passwords are refused rather than truncated.
	maxPasswordBytes = 72
	maxNameLen       = 100
	maxEmailLen      = 255
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if len(email) > maxEmailLen || !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > maxPasswordBytes {
		return &ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	var hasUpper, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if !hasUpper {
		return &ValidationError{Field: "password", Message: "password must contain at least one uppercase letter"}
	}
	if !hasNumber {
		return &ValidationError{Field: "password", Message: "password must contain at least one number"}
	}
	return nil
}

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	if utf8.RuneCountInString(value) > maxNameLen {
		return &ValidationError{Field: field, Message: field + " must be at most 100 characters"}
	}
	return nil
}
