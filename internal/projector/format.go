package projector

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"movimentos/internal/core"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders m the way pt-BR formats Brazilian reais: "R$ 1.234,50",
// with a leading minus for negative values ("-R$ 1.234,50").
func FormatBRL(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + brPrinter.Sprint(currency.Symbol(currency.BRL.Amount(float64(cents)/100)))
}
