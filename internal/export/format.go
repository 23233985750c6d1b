package export

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/piwi3910/boxplanner/internal/model"
)

// Formatter renders numbers for documents in one locale.
type Formatter struct {
	tag      language.Tag
	p        *message.Printer
	currency string
}

// NewFormatter returns a formatter for tag. Amounts use the tag's grouping
// and decimal separators and are followed by currency.
func NewFormatter(tag language.Tag, currency string) Formatter {
	return Formatter{tag: tag, p: message.NewPrinter(tag), currency: currency}
}

// DefaultFormatter formats for Polish readers.
var DefaultFormatter = NewFormatter(language.Polish, "zł")

// pdfFormatter spells the currency out; the core PDF fonts have no "ł".
var pdfFormatter = NewFormatter(language.Polish, "PLN")

// Money formats an amount rounded to grosz.
func (f Formatter) Money(v float64) string {
	return f.p.Sprintf("%.2f %s", cents(v), f.currency)
}

// WholeMoney formats an amount rounded to full złoty.
func (f Formatter) WholeMoney(v float64) string {
	d, _ := decimal.NewFromFloat(v).Round(0).Float64()
	return f.p.Sprintf("%.0f %s", d, f.currency)
}

// Number formats v with the given number of decimals.
func (f Formatter) Number(v float64, decimals int) string {
	d, _ := decimal.NewFromFloat(v).Round(int32(decimals)).Float64()
	return f.p.Sprintf("%."+strconv.Itoa(decimals)+"f", d)
}

// Quantity formats a cost line quantity with its unit.
func (f Formatter) Quantity(v float64, unit string) string {
	if unit == model.UnitPiece {
		return f.Number(v, 0) + " " + unit
	}
	return f.Number(v, 1) + " " + unit
}

// Percent formats a percentage with one decimal.
func (f Formatter) Percent(v float64) string {
	return f.Number(v, 1) + " %"
}

// Title capitalises each word of s.
func (f Formatter) Title(s string) string {
	return cases.Title(f.tag).String(strings.ToLower(s))
}

func cents(v float64) float64 {
	d, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return d
}
