package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/application/catalog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var quoteTemplate = template.Must(template.New("quote").Funcs(template.FuncMap{
	"formatMoney": formatMoney,
	"formatDate":  formatDate,
	"title":       titleCase,
}).Parse(quoteHTML))

const quoteHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{ title .CarTitle }}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; color: #222; font-size: 12pt; }
h1 { font-size: 20pt; margin: 0 0 4mm 0; }
.meta { color: #666; margin-bottom: 8mm; }
table { width: 100%; border-collapse: collapse; }
td { padding: 2mm 0; border-bottom: 1px solid #ddd; }
td.amount { text-align: right; white-space: nowrap; }
tr.total td { font-weight: bold; border-top: 2px solid #222; border-bottom: none; }
</style>
</head>
<body>
<h1>{{ .DealerName }}</h1>
<div class="meta">Price quote for {{ title .CarTitle }} &middot; {{ formatDate .IssuedAt }}</div>
<table>
{{- range .Quote.Lines }}
<tr class="line-{{ .Key }}"><td>{{ .Label }}</td><td class="amount">{{ formatMoney .Amount }}</td></tr>
{{- end }}
<tr class="total"><td>Total</td><td class="amount">{{ formatMoney .Quote.Total }}</td></tr>
</table>
</body>
</html>
`

// RenderQuoteHTML lays out a quote as a standalone HTML page
func RenderQuoteHTML(doc catalog.QuoteDocument) (string, error) {
	if doc.CarTitle == "" {
		doc.CarTitle = doc.Quote.CarTitle
	}
	if doc.IssuedAt.IsZero() {
		doc.IssuedAt = time.Now()
	}
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, doc); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "quote template execution failed", err)
	}
	return buf.String(), nil
}

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney groups thousands and always shows two decimals: 1,234,567.50
func formatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return sign + moneyPrinter.Sprintf("%d", whole.IntPart()) + fmt.Sprintf(".%02d", cents)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// titleCase fixes the casing of user-entered makes such as "mercedes-benz"
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
