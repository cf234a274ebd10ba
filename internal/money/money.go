package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// Round2 rounds half away from zero to the cent.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// RoundTo rounds half away from zero to the given number of places.
func RoundTo(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Sum adds amounts without accumulating float drift. Inputs are expected
// to be already rounded to the cent.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// Sub returns a-b rounded to the cent.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Mul multiplies base by rate and rounds to the cent.
func Mul(base, rate float64) float64 {
	return decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

// IsCents reports whether x is a whole number of cents.
func IsCents(x float64) bool {
	d := decimal.NewFromFloat(x)
	return d.Equal(d.Round(2))
}

// FormatEUR renders an amount the French way, e.g. "1 234,56 €".
func FormatEUR(x float64) string {
	return frPrinter.Sprintf("%.2f €", Round2(x))
}
