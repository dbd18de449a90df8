// Package money formats card amounts for the single supported locale.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const symbol = "₫"

var (
	Locale   = language.Vietnamese
	Currency = currency.MustParseISO("VND")
)

// EncodeAmountsAsNumbers makes every decimal.Decimal marshal as a bare JSON
// number instead of a quoted string. It changes a process-wide setting, so
// it is called once during startup.
func EncodeAmountsAsNumbers() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Format renders amount with Vietnamese digit grouping, e.g. "10.000.000 ₫".
// VND has no minor unit, so amounts are rounded to whole dong.
func Format(amount decimal.Decimal) string {
	p := message.NewPrinter(Locale)
	return p.Sprintf("%d %s", amount.Round(0).IntPart(), symbol)
}

// Code is the ISO 4217 code of the tracked currency.
func Code() string {
	return Currency.String()
}

// Sum adds every amount; an empty input yields zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
