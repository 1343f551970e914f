package catalog

import "strings"

// segmentItems splits an array body into its object literals, outer braces
// removed, in source order. Comments inside an item are replaced by a space.
func segmentItems(body string) []string {
	var (
		items []string
		cur   strings.Builder
		depth int
	)
	for i := 0; i < len(body); {
		c := body[i]
		if isCommentStart(body, i) {
			i = skipComment(body, i)
			if depth > 0 {
				cur.WriteByte(' ')
			}
			continue
		}
		if isQuote(c) {
			end := skipString(body, i)
			if depth > 0 {
				cur.WriteString(body[i:end])
			}
			i = end
			continue
		}

		switch c {
		case '{', '[':
			depth++
			if depth == 1 {
				cur.Reset()
				i++
				continue
			}
		case '}', ']':
			if depth == 0 {
				i++
				continue
			}
			depth--
			if depth == 0 {
				if c == '}' {
					items = append(items, cur.String())
				}
				i++
				continue
			}
		}
		if depth > 0 {
			cur.WriteByte(c)
		}
		i++
	}
	return items
}
