package service

import (
	"context"
	"errors"

	"signup/internal/users/models"
	dErrors "signup/pkg/domain-errors"
)

// EmailLookup answers whether an email is already registered.
type EmailLookup interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Validator checks a registration request before it reaches the store.
//
// The uniqueness check is a fast path only: two concurrent requests can both
// pass it, and the store's unique constraint decides which one wins.
type Validator struct {
	users EmailLookup
}

func NewValidator(users EmailLookup) *Validator {
	return &Validator{users: users}
}

// ValidateEmail fails with models.ErrDuplicateEmail when email is taken.
// The comparison is exact and case-sensitive.
func (v *Validator) ValidateEmail(ctx context.Context, email string) error {
	exists, err := v.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateEmail
	}
	return nil
}

// ValidatePhone fails with models.ErrInvalidPhoneFormat when phone is set and
// holds anything other than decimal digits.
func ValidatePhone(phone string) error {
	if phone == "" || models.IsDigits(phone) {
		return nil
	}
	return models.ErrInvalidPhoneFormat
}

// Validate runs every check on a normalized request and reports all rejected
// fields together as a CodeValidation error.
func (v *Validator) Validate(ctx context.Context, req *models.CreateUserRequest) error {
	fields := req.Validate()
	var causes []error

	if _, rejected := fields["phone"]; !rejected {
		if err := ValidatePhone(req.PhoneValue()); err != nil {
			fields.Add("phone", err.Error())
			causes = append(causes, err)
		}
	}

	if _, rejected := fields["email"]; !rejected {
		err := v.ValidateEmail(ctx, req.Email)
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			fields.Add("email", err.Error())
			causes = append(causes, err)
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
		}
	}

	if fields.Empty() {
		return nil
	}
	return dErrors.Validation(fields, errors.Join(causes...))
}
