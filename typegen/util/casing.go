package util

import (
	"strings"
	"unicode"
)

// Words splits an identifier into its words. Any rune that is not a letter
// or digit separates words, as do camelCase humps and the end of an
// acronym ("HTTPServer" -> "HTTP", "Server"). Digits stay attached to the
// word before them.
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1

	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		if unicode.IsUpper(r) {
			// lower->Upper hump, or the last capital of an acronym
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush(i)
				start = i
			}
		}
	}
	flush(len(runes))
	return words
}

// ToSnakeCase converts camelCase, PascalCase, kebab-case or dotted names
// to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// ToPascalCase converts snake_case, kebab-case, camelCase or dotted names
// to PascalCase. Only the first letter of each word changes case.
func ToPascalCase(s string) string {
	var result strings.Builder
	for _, part := range Words(s) {
		// Capitalize first letter, keep rest as-is
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}
	return result.String()
}
