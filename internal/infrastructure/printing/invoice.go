package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	apptrade "github.com/jewelry/backend/internal/application/trade"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var currencySymbols = map[valueobject.Currency]string{
	valueobject.USD: "$",
	valueobject.EUR: "€",
	valueobject.GBP: "£",
}

var invoiceFuncs = template.FuncMap{
	"money": formatMoney,
	"date":  formatDate,
	"label": label,
}

// formatMoney renders an amount with its currency symbol and thousand separators
func formatMoney(m valueobject.Money) string {
	symbol, ok := currencySymbols[m.Currency()]
	if !ok {
		symbol = string(m.Currency()) + " "
	}
	return symbol + formatDecimalWithCommas(m.Amount(), 2)
}

func formatDecimalWithCommas(d decimal.Decimal, places int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, fracPart, _ := strings.Cut(d.StringFixed(places), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return sign + b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// label turns an enum value such as cash_on_delivery into "Cash On Delivery"
func label(v any) string {
	return cases.Title(language.English).String(strings.ReplaceAll(fmt.Sprint(v), "_", " "))
}

// InvoiceData is the template input
type InvoiceData struct {
	ShopName string
	Order    *trade.Order
	IssuedAt time.Time
}

// InvoiceTemplate renders invoice HTML
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the embedded invoice template
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tmpl, err := template.New("invoice.html").Funcs(invoiceFuncs).ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Render executes the template
func (t *InvoiceTemplate) Render(data InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to render invoice", err)
	}
	return buf.String(), nil
}

// InvoiceGenerator implements the invoice port of the trade services. With a
// nil PDF renderer it returns the HTML document instead of a PDF.
type InvoiceGenerator struct {
	shopName string
	tmpl     *InvoiceTemplate
	pdf      PDFRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewInvoiceGenerator creates a generator
func NewInvoiceGenerator(shopName string, pdf PDFRenderer, logger *zap.Logger) (*InvoiceGenerator, error) {
	tmpl, err := NewInvoiceTemplate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if shopName == "" {
		shopName = "Jewelry"
	}
	return &InvoiceGenerator{
		shopName: shopName,
		tmpl:     tmpl,
		pdf:      pdf,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// RenderInvoice renders the order as PDF, or HTML when PDF rendering is off
func (g *InvoiceGenerator) RenderInvoice(ctx context.Context, order *trade.Order) (*apptrade.Invoice, error) {
	html, err := g.tmpl.Render(InvoiceData{ShopName: g.shopName, Order: order, IssuedAt: g.now()})
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("invoice-%d", order.ID)
	if g.pdf == nil {
		return &apptrade.Invoice{
			Filename:    base + ".html",
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(html),
		}, nil
	}

	result, err := g.pdf.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      fmt.Sprintf("Invoice #%d", order.ID),
		PaperSize:  PaperA4,
		Margins:    DefaultMargins(),
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		g.logger.Error("invoice rendering failed", zap.Int64("order_id", order.ID), zap.Error(err))
		return nil, err
	}
	return &apptrade.Invoice{
		Filename:    base + ".pdf",
		ContentType: "application/pdf",
		Data:        result.PDFData,
	}, nil
}

var _ apptrade.InvoiceRenderer = (*InvoiceGenerator)(nil)
