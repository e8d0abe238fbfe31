package email

import (
	"net/mail"
	"strings"
)

// MaxLength is the longest address accepted, per RFC 5321 path limits.
const MaxLength = 254

// IsValid reports whether addr is a bare address such as "ana@example.com".
// Display-name forms ("Ana <ana@example.com>") are rejected.
func IsValid(addr string) bool {
	if addr == "" || len(addr) > MaxLength {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return false
	}
	at := strings.LastIndexByte(addr, '@')
	return at > 0 && strings.Contains(addr[at+1:], ".")
}
