package listing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders v as thousands-grouped dollars with no decimals.
func FormatPrice(v float64) string {
	return pricePrinter.Sprintf("$%v", number.Decimal(v, number.MaxFractionDigits(0)))
}

// FormatPriceValue formats a decoded price, falling back to the raw value
// when it is not numeric.
func FormatPriceValue(v any) string {
	if f, ok := toFloat(v); ok {
		return FormatPrice(f)
	}
	return tmpl.Stringify(v)
}
