package llmquery

import (
	"regexp"
	"strings"
)

// queryPattern extracts the collection name and the filter body from the
// generated text. The filter body is copied verbatim; only the outer
// envelope is validated here.
var queryPattern = regexp.MustCompile(`db\.(\w+)\.find\((.*)\)`)

// barewordKeyPattern quotes bare object keys (including $operators) so the
// shell-style filter text becomes parseable extended JSON.
var barewordKeyPattern = regexp.MustCompile(`([{,[]\s*)([$\w]+)\s*:`)

// CleanGeneration strips markdown code fences, rewrites literal \n escapes
// into newlines, and trims the result.
func CleanGeneration(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.ReplaceAll(cleaned, `\n`, "\n")
	return strings.TrimSpace(cleaned)
}

// ParseQuery applies the fixed extraction pattern. The second return value
// is the filter body exactly as generated.
func ParseQuery(cleaned string) (collection string, filter string, ok bool) {
	match := queryPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

// NormalizeFilterJSON rewrites the shell-style filter the model emits
// (single quotes, bare keys) into strict JSON for the extended JSON parser.
func NormalizeFilterJSON(filter string) string {
	normalized := strings.TrimSpace(filter)
	if normalized == "" {
		return "{}"
	}
	normalized = barewordKeyPattern.ReplaceAllString(normalized, `$1"$2":`)
	return rewriteSingleQuotedStrings(normalized)
}

// rewriteSingleQuotedStrings converts single-quoted string literals into
// double-quoted JSON strings. An apostrophe inside a literal only closes it
// when the next non-space byte is a structural delimiter, so values like
// O'Brien survive. Double-quoted regions pass through untouched.
func rewriteSingleQuotedStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inDouble := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inDouble {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == '"' {
				inDouble = false
			}
			continue
		}
		switch c {
		case '"':
			inDouble = true
			b.WriteByte(c)
		case '\'':
			i = convertSingleQuoted(&b, s, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// convertSingleQuoted writes the literal opening at s[open] as a
// double-quoted string and returns the index of the closing quote. An
// unterminated literal is closed at end of input.
func convertSingleQuoted(b *strings.Builder, s string, open int) int {
	b.WriteByte('"')
	for i := open + 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			b.WriteByte(c)
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '\'':
			if closesSingleQuoted(s, i) {
				b.WriteByte('"')
				return i
			}
			b.WriteByte('\'')
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return len(s) - 1
}

// closesSingleQuoted reports whether the quote at s[i] terminates the
// literal: the next non-space byte must be a delimiter or end of input.
func closesSingleQuoted(s string, i int) bool {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case ',', '}', ']', ':':
			return true
		default:
			return false
		}
	}
	return true
}
