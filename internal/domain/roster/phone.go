package roster

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Unicode direction marks and whitespace that chat clients embed in
	// copied phone numbers.
	invisibleChars = regexp.MustCompile(`[\x{2066}\x{2069}\x{200E}\x{200F}\s]`)
	nonDigits      = regexp.MustCompile(`\D`)
)

// CleanPhoneNumber normalizes a phone number for lookup and storage.
// Israeli numbers (local 05X or international 972...) are rendered in the
// directory sheet's display form "972 XX-XXX-XXXX"; any other number
// collapses to its bare digits. An input with no digits yields "".
func CleanPhoneNumber(phone string) string {
	cleaned := invisibleChars.ReplaceAllString(phone, "")
	cleaned = strings.ReplaceAll(cleaned, "+", "")
	digits := nonDigits.ReplaceAllString(cleaned, "")
	if digits == "" {
		return ""
	}

	// Local Israeli number: 10 digits starting with 05X.
	if len(digits) == 10 && strings.HasPrefix(digits, "05") {
		digits = "972" + digits[1:]
	}

	if len(digits) == 12 && strings.HasPrefix(digits, "972") {
		return fmt.Sprintf("%s %s-%s-%s", digits[:3], digits[3:5], digits[5:8], digits[8:])
	}

	return digits
}
