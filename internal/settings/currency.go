package settings

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// homeLocale picks the formatting locale for each offered currency.
var homeLocale = map[string]language.Tag{
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"CAD": language.MustParse("en-CA"),
	"AUD": language.MustParse("en-AU"),
	"JPY": language.Japanese,
	"ZAR": language.MustParse("en-ZA"),
	"INR": language.MustParse("en-IN"),
	"BRL": language.BrazilianPortuguese,
	"CNY": language.Chinese,
}

// Money formats amounts in one currency.
type Money struct {
	Code    string
	unit    currency.Unit
	printer *message.Printer
	symbol  string
	prefix  bool
}

// NewMoney returns a formatter for code. Unknown codes format with the code
// itself as a trailing symbol.
func NewMoney(code string) Money {
	code = strings.ToUpper(strings.TrimSpace(code))
	tag, ok := homeLocale[code]
	if !ok {
		tag = language.English
	}
	m := Money{Code: code, printer: message.NewPrinter(tag)}

	unit, err := currency.ParseISO(code)
	if err != nil {
		m.unit = currency.USD
		m.symbol = code
		return m
	}
	m.unit = unit
	m.symbol = m.printer.Sprint(currency.NarrowSymbol(unit))

	switch code {
	case "USD", "GBP", "CAD", "AUD", "JPY", "ZAR", "INR", "CNY":
		m.prefix = true
	}
	return m
}

// Format renders amount with two decimals and the currency symbol, e.g. "$1,234.50".
func (m Money) Format(amount float64) string {
	digits := 2
	if m.Code == "JPY" {
		digits = 0
	}
	formatted := m.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(digits), number.MaxFractionDigits(digits)))
	if m.prefix {
		return m.symbol + formatted
	}
	return formatted + " " + m.symbol
}

// Money returns the formatter for the configured currency.
func (s Settings) Money() Money {
	return NewMoney(s.Currency)
}
