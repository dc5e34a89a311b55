package cognito

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is assumed for numbers written without a country code.
const DefaultPhoneRegion = "US"

// NormalizePhone returns raw in E.164 form, or "" when it is not a plausible
// phone number.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if !hasPhoneCharacters(raw) {
		return ""
	}

	number, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsPhoneNumber reports whether identifier looks like a phone number rather
// than an email address.
func IsPhoneNumber(identifier string) bool {
	return NormalizePhone(identifier) != ""
}

// hasPhoneCharacters allows digits and common separators only. Letters are
// rejected even though the parser would map them to keypad digits.
func hasPhoneCharacters(raw string) bool {
	if raw == "" {
		return false
	}
	digits := 0
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= 10
}
