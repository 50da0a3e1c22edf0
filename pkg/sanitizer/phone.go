package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"workbay/pkg/locale"
)

// NormalizePhone converts a phone number to E.164 format, trying each
// supported region in turn. Returns "" when the number cannot be parsed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range locale.PhoneRegions() {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}
