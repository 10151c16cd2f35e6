package lexical

import "strings"

// Normalize lower-cases text, trims it and collapses every whitespace run to
// a single space. Empty input yields "". Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
