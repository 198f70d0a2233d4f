package validation

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all HTML from free-text input (descriptions, broker
// names, credential labels) before it is persisted or echoed back.
func SanitizeText(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// SanitizeMap sanitizes every value of a string map in place.
func SanitizeMap(values map[string]string) {
	for k, v := range values {
		values[k] = SanitizeText(v)
	}
}
