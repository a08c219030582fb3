package services

import (
	"errors"
	"unicode"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordNeedsLetter  = errors.New("password needs a letter")
	ErrPasswordNeedsDigit   = errors.New("password needs a digit")
	ErrPasswordConfirmation = errors.New("passwords do not match")
)

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return ErrPasswordNeedsLetter
	}
	if !hasDigit {
		return ErrPasswordNeedsDigit
	}
	return nil
}

func ValidatePasswordChange(password string, confirmation string) error {
	if password != confirmation {
		return ErrPasswordConfirmation
	}
	return ValidatePassword(password)
}
