package models

import "errors"

var (
	// ErrDuplicateEmail means another user already registered the email.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidPhoneFormat means the phone contains something other than digits.
	ErrInvalidPhoneFormat = errors.New("phone must contain only digits")
)
