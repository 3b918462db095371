package report

import (
	"context"
	"html"
	"strings"
)

// ReceiptHTML wraps the plain-text collection receipt in a printable HTML
// shell. The receipt is column-aligned text, so it renders inside a <pre>
// block with a monospace font.
func ReceiptHTML(receipt string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	b.WriteString("<style>body{margin:24px}pre{font-family:\"Courier New\",monospace;font-size:12px;white-space:pre-wrap}</style>")
	b.WriteString("</head><body><pre>")
	b.WriteString(html.EscapeString(receipt))
	b.WriteString("</pre></body></html>")
	return b.String()
}

// RenderReceipt converts a plain-text receipt into a PDF document.
func (c *Client) RenderReceipt(ctx context.Context, receipt string) ([]byte, error) {
	return c.RenderHTML(ctx, ReceiptHTML(receipt))
}
