package export

import (
	"html/template"
	"io"
	"time"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"

	"github.com/shopspring/decimal"
)

var billTemplate = template.Must(template.New("bill").Funcs(template.FuncMap{
	"money":   utils.FormatCurrency,
	"percent": func(rate decimal.Decimal) string { return models.PercentFromRate(rate).String() + "%" },
	"date":    func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.BillNumber}}</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2em auto; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 4px 6px; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
tfoot td { border: none; }
</style>
</head>
<body>
<h1>Bill {{.BillNumber}}</h1>
<p>{{date .CreatedAt}}{{if .CustomerName}}<br>Customer: {{.CustomerName}}{{end}}{{if .CustomerContact}}<br>Contact: {{.CustomerContact}}{{end}}</p>
<table>
<thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Name}}{{if .SKU}} <small>({{.SKU}})</small>{{end}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .UnitPrice}}</td><td class="num">{{money .Total}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="3" class="num">Subtotal</td><td class="num">{{money .Subtotal}}</td></tr>
<tr><td colspan="3" class="num">Tax ({{percent .TaxRate}})</td><td class="num">{{money .Tax}}</td></tr>
{{if not .Discount.IsZero}}<tr><td colspan="3" class="num">Discount</td><td class="num">-{{money .Discount}}</td></tr>
{{end}}<tr><td colspan="3" class="num"><strong>Total</strong></td><td class="num"><strong>{{money .Total}}</strong></td></tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderBill writes a printable HTML receipt.
func RenderBill(w io.Writer, bill *models.Bill) error {
	return billTemplate.Execute(w, bill)
}
