// Package display formats dashboard values for people. Nothing here feeds
// back into the aggregations.
package display

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/navid-fn/ecomdash/internal/aggregation"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL formats an amount in Brazilian reais, rounded to cents.
func FormatBRL(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprint(currency.Symbol(currency.BRL.Amount(f)))
}

// FormatCount formats an integer with locale digit grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Metrics is the summary as shown on the dashboard.
type Metrics struct {
	TotalOrders  string  `json:"total_orders"`
	TotalRevenue string  `json:"total_revenue"`
	AvgRecency   float64 `json:"avg_recency_days"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  string  `json:"avg_monetary"`
}

// SummaryMetrics rounds recency to one place and frequency to two.
func SummaryMetrics(s aggregation.Summary) Metrics {
	return Metrics{
		TotalOrders:  FormatCount(s.TotalOrders),
		TotalRevenue: FormatBRL(s.TotalRevenue),
		AvgRecency:   Round(s.AvgRecency, 1),
		AvgFrequency: Round(s.AvgFrequency, 2),
		AvgMonetary:  FormatBRL(s.AvgMonetary),
	}
}
