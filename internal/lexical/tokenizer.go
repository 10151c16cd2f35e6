package lexical

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordPattern matches maximal runs of word characters.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)

// minTokenRunes drops one-character noise like "a" or the "s" of "it's".
const minTokenRunes = 2

// tokenize splits already-normalised text into words, dropping short tokens
// and stop words.
func tokenize(text string, stop map[string]struct{}) []string {
	words := wordPattern.FindAllString(text, -1)
	tokens := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTokenRunes {
			continue
		}
		if _, ok := stop[w]; ok {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// ngrams expands tokens into every contiguous n-gram with min <= n <= max.
// Stop words are removed before n-grams are formed.
func ngrams(tokens []string, minN, maxN int) []string {
	if minN == 1 && maxN == 1 {
		return tokens
	}
	var out []string
	for n := minN; n <= maxN; n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// analyze turns normalised text into the terms counted by the index.
func analyze(text string, stop map[string]struct{}, minN, maxN int) []string {
	return ngrams(tokenize(text, stop), minN, maxN)
}
