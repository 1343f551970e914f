package catalog

import (
	"fmt"
	"regexp"
)

// DefaultArrayName is the declaration the storefront data file exports.
const DefaultArrayName = "products"

// SourceFormatError reports that the array literal could not be located.
type SourceFormatError struct {
	ArrayName string
	Reason    string
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("catalog source: array %q: %s", e.ArrayName, e.Reason)
}

func anchorPattern(name string) *regexp.Regexp {
	// const products: Product[] = [
	return regexp.MustCompile(`\b(?:const|let|var)\s+` + regexp.QuoteMeta(name) + `\s*(?::[^=\n]*)?=\s*\[`)
}

// locateArray returns the text strictly between the opening bracket of the
// named declaration and the bracket that closes it at depth zero.
func locateArray(src, name string) (string, error) {
	loc := findAnchor(src, anchorPattern(name))
	if loc == nil {
		return "", &SourceFormatError{ArrayName: name, Reason: "declaration not found"}
	}
	start := loc[1]

	depth := 1
	for i := start; i < len(src); {
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
				if c != ']' {
					return "", &SourceFormatError{ArrayName: name, Reason: fmt.Sprintf("unbalanced %q at offset %d", c, i)}
				}
				return src[start:i], nil
			}
		}
		i++
	}
	return "", &SourceFormatError{ArrayName: name, Reason: "closing bracket not found"}
}

// findAnchor returns the first match of re that starts in code, skipping
// matches inside comments and string literals.
func findAnchor(src string, re *regexp.Regexp) []int {
	pos := 0
	for _, loc := range re.FindAllStringIndex(src, -1) {
		for pos < loc[0] {
			switch {
			case isQuote(src[pos]):
				pos = skipString(src, pos)
			case isCommentStart(src, pos):
				pos = skipComment(src, pos)
			default:
				pos++
			}
		}
		if pos == loc[0] {
			return loc
		}
	}
	return nil
}
