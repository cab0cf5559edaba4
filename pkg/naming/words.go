package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Words splits s into words on non-alphanumeric runs and camelCase
// boundaries. Acronyms stay whole: "XMLHttp" -> "XML", "Http".
func Words(s string) []string {
	s = RemoveAccents(strings.TrimSpace(s))
	var out []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		out = append(out, splitCamelCase(part)...)
	}
	return out
}

// splitCamelCase splits a camelCase or PascalCase string into words
func splitCamelCase(s string) []string {
	var parts []string
	var current strings.Builder

	rs := []rune(s)
	for i, r := range rs {
		isNewWord := false
		if i > 0 && isUpper(r) {
			if !isUpper(rs[i-1]) {
				isNewWord = true
			} else if i < len(rs)-1 && isLower(rs[i+1]) {
				// "XMLHttp" -> "XML", "Http"
				isNewWord = true
			}
		}
		if isNewWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// upperFirst capitalizes the first letter and keeps the rest.
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// ToPascalCase joins the words of s, capitalizing each and keeping
// acronyms: "user_profile" -> "UserProfile", "XMLDoc" -> "XMLDoc".
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(upperFirst(w))
	}
	return b.String()
}

// ToCamelCase converts s to camelCase. A leading acronym is lowered as a
// whole: "XMLHttp" -> "xmlHttp", "ID" -> "id".
func ToCamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(upperFirst(w))
	}
	return b.String()
}

// ToSnakeCase converts s to snake_case.
func ToSnakeCase(s string) string {
	return joinLower(Words(s), "_")
}

// ToKebabCase converts s to kebab-case.
func ToKebabCase(s string) string {
	return joinLower(Words(s), "-")
}

func joinLower(words []string, sep string) string {
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, sep)
}

// ArgName is the call-argument spelling of a parameter name, a valid
// identifier in every target: "session-id" -> "sessionId", "2fa" -> "p2fa".
func ArgName(name string) string {
	c := ToCamelCase(name)
	if c == "" {
		return "param"
	}
	if c[0] >= '0' && c[0] <= '9' {
		return "p" + c
	}
	return c
}
