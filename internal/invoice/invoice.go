// Package invoice renders a persisted sale as a fixed-layout, single-page
// printable HTML document. It is a pure formatting transform: stored line
// and order totals are printed verbatim, never recomputed.
package invoice

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"

	"backoffice/internal/api"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// Reference derives the short human-facing invoice reference from the tail
// of the sale's identifier.
func Reference(sale *api.Sale) string {
	id := sale.ID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

// Filename is the deterministic download name for a sale's invoice.
func Filename(sale *api.Sale) string {
	return "invoice-" + strings.ToLower(Reference(sale)) + ".html"
}

type lineView struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

type documentView struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	CompanyTax     string
	Reference      string
	IssueDate      string
	CustomerName   string
	Lines          []lineView
	Total          string
	QRDataURI      template.URL
}

// Generate renders the invoice document for an already-persisted sale.
// Issuer identity comes from the company profile; the recipient, issue date,
// line rows, and total all come from the sale record as stored.
func Generate(sale *api.Sale, company *api.Company, currencySymbol string) ([]byte, error) {
	ref := Reference(sale)

	qr, err := qrcode.Encode(ref, qrcode.Medium, 128)
	if err != nil {
		return nil, fmt.Errorf("invoice qr: %w", err)
	}

	view := documentView{
		CompanyName:    company.Name,
		CompanyAddress: company.Address,
		CompanyPhone:   company.Phone,
		CompanyEmail:   company.Email,
		CompanyTax:     company.TaxNumber,
		Reference:      ref,
		IssueDate:      sale.CreatedAt.Format("02 Jan 2006"),
		CustomerName:   sale.CustomerName,
		Total:          money(currencySymbol, sale.TotalAmount),
		QRDataURI:      template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(qr)),
	}
	for _, it := range sale.Items {
		view.Lines = append(view.Lines, lineView{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: money(currencySymbol, it.SellingPrice),
			Total:     money(currencySymbol, it.TotalAmount),
		})
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", ref, err)
	}
	return buf.Bytes(), nil
}

func money(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

var documentTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Reference}}</title>
<style>
  @page { size: A4; margin: 2cm; }
  body { font-family: Georgia, serif; color: #1a1a1a; max-width: 720px; margin: 0 auto; padding: 2rem; }
  header { display: flex; justify-content: space-between; border-bottom: 3px solid #1a1a1a; padding-bottom: 1rem; }
  h1 { margin: 0; font-size: 1.6rem; letter-spacing: 0.1em; }
  .issuer p, .meta p { margin: 0.15rem 0; font-size: 0.9rem; }
  .meta { text-align: right; }
  .recipient { margin: 1.5rem 0; }
  table { width: 100%; border-collapse: collapse; margin-top: 1rem; }
  th { text-align: left; border-bottom: 2px solid #1a1a1a; padding: 0.5rem 0.25rem; font-size: 0.85rem; }
  th.num, td.num { text-align: right; }
  td { border-bottom: 1px solid #ccc; padding: 0.5rem 0.25rem; font-size: 0.9rem; }
  tfoot td { border-bottom: none; border-top: 2px solid #1a1a1a; font-weight: bold; }
  footer { margin-top: 3rem; display: flex; justify-content: space-between; align-items: flex-end; }
  footer small { color: #555; }
</style>
</head>
<body>
<header>
  <div class="issuer">
    <h1>{{.CompanyName}}</h1>
    <p>{{.CompanyAddress}}</p>
    {{if .CompanyPhone}}<p>Phone: {{.CompanyPhone}}</p>{{end}}
    {{if .CompanyEmail}}<p>Email: {{.CompanyEmail}}</p>{{end}}
    {{if .CompanyTax}}<p>Tax No: {{.CompanyTax}}</p>{{end}}
  </div>
  <div class="meta">
    <h1>INVOICE</h1>
    <p>Ref: {{.Reference}}</p>
    <p>Date: {{.IssueDate}}</p>
  </div>
</header>
<div class="recipient">
  <strong>Billed To</strong>
  <p>{{.CustomerName}}</p>
</div>
<table>
  <thead>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Amount</th></tr>
  </thead>
  <tbody>
    {{range .Lines}}<tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Total}}</td></tr>
    {{end}}
  </tbody>
  <tfoot>
    <tr><td colspan="3">Total</td><td class="num">{{.Total}}</td></tr>
  </tfoot>
</table>
<footer>
  <small>Thank you for your business.</small>
  <img src="{{.QRDataURI}}" alt="Invoice reference QR" width="96" height="96">
</footer>
</body>
</html>
`))
