package models

import (
	"time"
)

// Field limits carried over from the users table definition.
const (
	MaxNameLength  = 120
	MaxPhoneLength = 30
)

// User is a registered user record.
//
// Invariants:
//   - ID and CreatedAt are assigned by the store and never change afterwards
//   - Email is unique across all users (enforced by the store)
//   - Phone, when set, contains only decimal digits
//
// Users are never updated or deleted through this service.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// PhoneValue returns the phone number or "" when absent.
func (u *User) PhoneValue() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

// NewUser builds an unsaved user from a normalized request.
// An empty phone is stored as absent.
func NewUser(name, email, phone string) *User {
	u := &User{Name: name, Email: email}
	if phone != "" {
		u.Phone = &phone
	}
	return u
}
