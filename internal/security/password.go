package security

import "strings"

// passwordSymbols is the set of symbols accepted by IsStrongPassword.
const passwordSymbols = "!@#$%^&*()-_=+[]{};:,.<>?/|~"

// IsStrongPassword reports whether password is at least 8 characters and
// contains at least one letter, one digit, and one symbol from the allowed set.
// Pure predicate; does no I/O.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasLetter && hasDigit && hasSymbol
}
