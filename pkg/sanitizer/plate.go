package sanitizer

import (
	"strings"
	"unicode"
)

// NormalizePlate uppercases a license plate and strips everything
// except letters and digits. "ab-123-cd" becomes "AB123CD".
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(plate)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
