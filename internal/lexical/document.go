package lexical

import "strings"

// MakeDocument builds the composite text indexed for one article: the
// normalised title, titleWeight more copies of it, then the normalised content.
// Negative weights are treated as 0.
func MakeDocument(title, content string, titleWeight int) string {
	t := Normalize(title)
	c := Normalize(content)
	if titleWeight < 0 {
		titleWeight = 0
	}

	var b strings.Builder
	b.Grow((len(t)+1)*(titleWeight+1) + len(c) + 1)
	b.WriteString(t)
	for i := 0; i < titleWeight; i++ {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	b.WriteByte(' ')
	b.WriteString(c)
	return strings.TrimSpace(b.String())
}
