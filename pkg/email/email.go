// Package email derives display names from email addresses for profiles
// registered without one.
package email

import (
	"strings"
	"unicode"
)

// DisplayName builds a human-readable name from the local part of an email
// address, e.g. "ravi.kumar@example.com" becomes "Ravi Kumar". An address
// with an empty local part yields "Donor".
func DisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Donor"
	}

	for i, part := range parts {
		parts[i] = capitalize(part)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
