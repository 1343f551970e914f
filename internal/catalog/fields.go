package catalog

import (
	"strconv"
	"strings"

	"shopsmart/internal/model"
)

// valueStart finds the first `key:` at the top level of src and returns the
// offset of the value that follows it. Keys may be bare identifiers or quoted.
// Occurrences inside string literals, nested blocks, or as the tail of a
// longer identifier (description in longDescription) do not match.
func valueStart(src, key string) (int, bool) {
	depth := 0
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case isCommentStart(src, i):
			i = skipComment(src, i)
			continue
		case isQuote(c):
			end := skipString(src, i)
			if depth == 0 && end-i >= 2 && src[end-1] == c && src[i+1:end-1] == key {
				if v, ok := afterColon(src, end); ok {
					return v, true
				}
			}
			i = end
			continue
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			if depth == 0 && src[i:j] == key {
				if v, ok := afterColon(src, j); ok {
					return v, true
				}
			}
			i = j
			continue
		}
		i++
	}
	return 0, false
}

func afterColon(src string, i int) (int, bool) {
	i = skipSpace(src, i)
	if i >= len(src) || src[i] != ':' {
		return 0, false
	}
	return skipSpace(src, i+1), true
}

// stringField returns the quoted value of key, or "" when the key is absent
// or its value is not a terminated string literal. Escaped quotes inside the
// value are not supported.
func stringField(src, key string) string {
	i, ok := valueStart(src, key)
	if !ok || i >= len(src) || !isQuote(src[i]) {
		return ""
	}
	end := strings.IndexByte(src[i+1:], src[i])
	if end < 0 {
		return ""
	}
	return src[i+1 : i+1+end]
}

// numericToken returns the longest run at i made of an optional sign, digits,
// and at most one decimal point.
func numericToken(src string, i int) string {
	j := i
	if j < len(src) && (src[j] == '-' || src[j] == '+') {
		j++
	}
	dot := false
	for j < len(src) {
		c := src[j]
		if c >= '0' && c <= '9' {
			j++
			continue
		}
		if c == '.' && !dot {
			dot = true
			j++
			continue
		}
		break
	}
	return src[i:j]
}

func numberField(src, key string) float64 {
	i, ok := valueStart(src, key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(numericToken(src, i), 64)
	if err != nil {
		return 0
	}
	return f
}

func intField(src, key string) int {
	i, ok := valueStart(src, key)
	if !ok {
		return 0
	}
	tok := numericToken(src, i)
	if dot := strings.IndexByte(tok, '.'); dot >= 0 {
		tok = tok[:dot]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0
	}
	return n
}

// blockField returns the contents of the brace or bracket span that is the
// value of key, without the delimiters.
func blockField(src, key string, open byte) (string, bool) {
	i, ok := valueStart(src, key)
	if !ok || i >= len(src) || src[i] != open {
		return "", false
	}
	end := closing(src, i)
	if end < 0 {
		return "", false
	}
	return src[i+1 : end], true
}

// listField returns the elements of an inline list literal. The result is
// never nil.
func listField(src, key string) []string {
	out := []string{}
	body, ok := blockField(src, key, '[')
	if !ok {
		return out
	}
	for _, el := range splitTopLevel(body, ',') {
		el = unquote(strings.TrimSpace(el))
		if el == "" {
			continue
		}
		out = append(out, el)
	}
	return out
}

// sentimentField reads the sentiment block and its aspects. It returns the
// number of aspect entries that were dropped because they did not parse.
func sentimentField(src string) (model.Sentiment, int) {
	s := model.Sentiment{Aspects: model.Aspects{}}
	block, ok := blockField(src, "sentiment", '{')
	if !ok {
		return s, 0
	}
	s.Positive = intField(block, "positive")
	s.Negative = intField(block, "negative")

	aspects, ok := blockField(block, "aspects", '{')
	if !ok {
		return s, 0
	}
	dropped := 0
	for _, entry := range splitTopLevel(aspects, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, raw, found := strings.Cut(entry, ":")
		name = unquote(strings.TrimSpace(name))
		score, err := strconv.Atoi(strings.TrimSpace(raw))
		if !found || name == "" || err != nil {
			dropped++
			continue
		}
		s.Aspects.Set(name, score)
	}
	return s, dropped
}
