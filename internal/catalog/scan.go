package catalog

import "strings"

// The helpers below walk literal source byte by byte. String literals and
// comments are skipped as opaque runs so brackets inside them never change
// the nesting depth.

func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isCommentStart(src string, i int) bool {
	return src[i] == '/' && i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*')
}

// skipString returns the offset just past the string literal opening at i.
// An unterminated literal runs to the end of src.
func skipString(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return len(src)
}

// skipComment returns the offset just past the comment opening at i.
func skipComment(src string, i int) int {
	if src[i+1] == '/' {
		if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
			return i + nl + 1
		}
		return len(src)
	}
	if end := strings.Index(src[i+2:], "*/"); end >= 0 {
		return i + 2 + end + 2
	}
	return len(src)
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

// closing returns the offset of the bracket that closes the one at open,
// or -1 when src ends first.
func closing(src string, open int) int {
	depth := 0
	for i := open; i < len(src); {
		c := src[i]
		switch {
		case isQuote(c):
			i = skipString(src, i)
			continue
		case isCommentStart(src, i):
			i = skipComment(src, i)
			continue
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// splitTopLevel splits s on sep wherever sep sits outside string literals
// and nested brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isQuote(c):
			i = skipString(s, i)
			continue
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
		i++
	}
	return append(parts, s[last:])
}

// unquote strips one matching pair of quote characters.
func unquote(s string) string {
	if len(s) >= 2 && isQuote(s[0]) && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
