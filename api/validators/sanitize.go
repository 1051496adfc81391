package validators

import "strings"

// SanitizeString trims, collapses inner whitespace runs to one space and
// caps the result at maxLen runes. maxLen <= 0 disables the cap.
func SanitizeString(input string, maxLen int) string {
	out := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 {
		return out
	}
	runes := []rune(out)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return out
}
