package validate

import (
	"strings"

	"github.com/ShiraazMoollatjie/goluhn"
)

const (
	minCardDigits = 12
	maxCardDigits = 19
)

// CardNumber strips spaces and dashes from s and reports whether what is left is a
// plausible payment card number passing the Luhn check.
func CardNumber(s string) (string, bool) {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return digits, false
	}
	return digits, goluhn.Validate(digits) == nil
}
