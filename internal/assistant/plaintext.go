package assistant

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText flattens markup in catalog copy so prompts carry only the words.
// Text without tags or entities is returned unchanged.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	var parts []string
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		parts = append(parts, sel.Text())
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
