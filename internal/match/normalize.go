package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent lowercases an identifier and drops separators, so
// "BasePerson", "base_person" and "base-person" compare equal. Package
// qualifiers ("zoo.Animal") keep their dot.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// TokenizeIdent splits an identifier into lowercase tokens at separators
// and CamelCase boundaries ("XMLParser" -> "xml", "parser").
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken reports a lower-to-upper transition or the last capital of an
// acronym followed by a lowercase letter.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return !isSeparator(prev)
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
