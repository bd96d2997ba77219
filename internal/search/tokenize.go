package search

import (
	"strings"
	"unicode"
)

// Tokenize lowercases and splits text into identifier tokens. Splits happen
// on any non-alphanumeric rune and inside camelCase humps, so "parseHTTPDoc"
// yields [parse http doc] and "snake_case" yields [snake case].
func Tokenize(text string) []string {
	var tokens []string
	for _, word := range splitNonAlnum(text) {
		tokens = append(tokens, splitCamel(word)...)
	}
	return tokens
}

func splitNonAlnum(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamel breaks one word at lower-to-upper transitions and at the end of
// acronym runs, lowercasing each piece.
func splitCamel(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		if unicode.IsLower(prev) && unicode.IsUpper(cur) {
			boundary = true
		}
		// An acronym run ends where the next rune starts a capitalized word:
		// "HTTPDoc" splits before "Doc".
		if i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if unicode.IsDigit(prev) != unicode.IsDigit(cur) {
			boundary = true
		}
		if boundary {
			parts = append(parts, strings.ToLower(string(runes[start:i])))
			start = i
		}
	}
	parts = append(parts, strings.ToLower(string(runes[start:])))
	return parts
}
