// Package validate holds the pure format predicates used by the auth flows.
// The functions are stateless, perform no I/O and only ever return a bool.
package validate

import (
	"regexp"
	"strings"
)

var (
	nameRegex      = regexp.MustCompile(`^[A-Za-z][A-Za-z\s'\-]{1,49}$`)
	localPartRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+$`)
	domainRegex    = regexp.MustCompile(`^[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// Name reports whether s is a valid display name: 2-50 characters, starting
// with a letter, the rest letters, spaces, hyphens or apostrophes.
func Name(s string) bool {
	return nameRegex.MatchString(s)
}

// Email reports whether s is a valid address: exactly one local@domain split,
// local part 1-64 characters from the permitted set, domain 3-255 characters
// of dotted labels ending in a TLD of at least two letters, not starting with
// a hyphen, and no consecutive dots anywhere.
func Email(s string) bool {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return false
	}
	local, domain := parts[0], parts[1]

	if len(local) < 1 || len(local) > 64 {
		return false
	}
	if !localPartRegex.MatchString(local) {
		return false
	}

	if len(domain) < 3 || len(domain) > 255 {
		return false
	}
	if strings.HasPrefix(domain, "-") {
		return false
	}
	if !domainRegex.MatchString(domain) {
		return false
	}

	if strings.Contains(local, "..") || strings.Contains(domain, "..") {
		return false
	}
	return true
}

// SignupPassword reports whether s meets the signup strength rules: at least
// 8 characters with one uppercase, one lowercase, one digit and one symbol.
func SignupPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// LoginPassword reports whether s is acceptable at login. Only the length is
// checked; strength is not re-validated against stored accounts.
func LoginPassword(s string) bool {
	return len(s) >= 8
}
