package reporter

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// moneyFormatter renders amounts with thousands grouping and a currency glyph
type moneyFormatter struct {
	symbol  string
	printer *message.Printer
}

func newMoneyFormatter(symbol string) *moneyFormatter {
	return &moneyFormatter{
		symbol:  symbol,
		printer: message.NewPrinter(language.English),
	}
}

// group formats d with grouping and either zero or two decimals, no symbol
func (m *moneyFormatter) group(d decimal.Decimal, places int) string {
	if places == 0 {
		return m.printer.Sprintf("%.0f", d.InexactFloat64())
	}
	return m.printer.Sprintf("%.2f", d.InexactFloat64())
}

// amount renders d as symbol + grouped value, e.g. ₹1,234.50
func (m *moneyFormatter) amount(d decimal.Decimal, places int) string {
	return m.symbol + m.group(d, places)
}

// padded renders symbol + value right-aligned to width
func (m *moneyFormatter) padded(d decimal.Decimal, places, width int) string {
	return m.symbol + fmt.Sprintf("%*s", width, m.group(d, places))
}

func percent(d decimal.Decimal, width int) string {
	return fmt.Sprintf("%*s%%", width, d.StringFixed(2))
}

// FormatCurrency renders d with symbol, thousands grouping and either zero
// or two decimals.
func FormatCurrency(symbol string, d decimal.Decimal, places int) string {
	return newMoneyFormatter(symbol).amount(d, places)
}
