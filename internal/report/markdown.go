// Package report renders catalog summaries for people.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"shopsmart/internal/model"
)

const DefaultPath = "product_report.md"

// Write renders products as a Markdown table with one row per product.
func Write(w io.Writer, products []model.Product) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Product Report")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Total products: %d\n\n", len(products))
	fmt.Fprintln(bw, "| ID | Name | Category | Price | Image |")
	fmt.Fprintln(bw, "|----|------|----------|-------|-------|")
	for _, p := range products {
		fmt.Fprintf(bw, "| %s | %s | %s | $%.2f | %s |\n",
			cell(p.ID), cell(p.Name), cell(p.Category), p.Price, cell(p.Image))
	}
	return bw.Flush()
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
