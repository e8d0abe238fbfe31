package models

import (
	"strings"
	"unicode/utf8"

	dErrors "signup/pkg/domain-errors"
	"signup/pkg/email"
)

// CreateUserRequest is the body accepted by POST /api/users/.
type CreateUserRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// Normalize trims surrounding whitespace. A blank phone becomes absent.
func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Phone != nil {
		phone := strings.TrimSpace(*r.Phone)
		if phone == "" {
			r.Phone = nil
		} else {
			r.Phone = &phone
		}
	}
}

// PhoneValue returns the requested phone or "".
func (r *CreateUserRequest) PhoneValue() string {
	if r.Phone == nil {
		return ""
	}
	return *r.Phone
}

// Validate checks field presence, lengths and email syntax. Phone format and
// email uniqueness are checked by the service validator.
func (r *CreateUserRequest) Validate() dErrors.Fields {
	fields := dErrors.Fields{}
	switch {
	case r.Name == "":
		fields.Add("name", "this field is required")
	case utf8.RuneCountInString(r.Name) > MaxNameLength:
		fields.Add("name", "ensure this field has no more than 120 characters")
	}
	switch {
	case r.Email == "":
		fields.Add("email", "this field is required")
	case len(r.Email) > email.MaxLength:
		fields.Add("email", "ensure this field has no more than 254 characters")
	case !email.IsValid(r.Email):
		fields.Add("email", "enter a valid email address")
	}
	if len(r.PhoneValue()) > MaxPhoneLength {
		fields.Add("phone", "ensure this field has no more than 30 characters")
	}
	return fields
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
