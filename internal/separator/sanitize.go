package separator

import (
	"regexp"
	"strings"
)

// The model is instructed to answer with JSON only, but replies routinely
// arrive wrapped in prose, markdown fences, comments, or with trailing
// commas. Everything in this file is best-effort sanitizing; schema
// validation happens afterwards in parse.go.

var greedyObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON locates the JSON object embedded in a model reply. It scans
// forward from the first brace tracking brace depth (string-aware), and
// falls back to a greedy regex match when the braces never balance.
func ExtractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	if m := greedyObjectRe.FindString(raw); m != "" {
		return m, true
	}
	return "", false
}

// StripComments removes /* */ and // comments outside of string literals.
func StripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				if i < len(s) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				i += 2
				for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
					i++
				}
				i++ // skip closing '/'
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// StripTrailingCommas removes commas that directly precede a closing brace
// or bracket, outside of string literals.
func StripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the comma
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// Sanitize applies the full best-effort cleanup to an extracted JSON blob.
func Sanitize(s string) string {
	return StripTrailingCommas(StripComments(s))
}
