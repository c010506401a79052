package aggregation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
)

// RFM computes recency, frequency and monetary value per customer, in
// first-encounter order.
//
// Recency is measured against the latest purchase date of the whole table,
// not today, so the most recent customer always has recency 0.
func RFM(t *dataset.Table) []models.RFM {
	type acc struct {
		last     time.Time
		orders   distinct
		monetary decimal.Decimal
	}
	g := groupBy(t,
		func(l models.OrderLine) string { return l.CustomerUniqueID },
		func(a *acc, l models.OrderLine) {
			if l.OrderPurchaseTimestamp.After(a.last) {
				a.last = l.OrderPurchaseTimestamp
			}
			a.orders.add(l.OrderID)
			a.monetary = a.monetary.Add(l.Price)
		})

	out := make([]models.RFM, 0, len(g.keys))
	if len(g.keys) == 0 {
		return out
	}

	var recent models.Date
	for _, k := range g.keys {
		if d := models.DateOf(g.accs[k].last); d.After(recent.Time) {
			recent = d
		}
	}

	for _, k := range g.keys {
		a := g.accs[k]
		out = append(out, models.RFM{
			CustomerUniqueID:  k,
			MaxOrderTimestamp: a.last,
			Frequency:         a.orders.len(),
			Monetary:          a.monetary,
			Recency:           recent.DaysSince(models.DateOf(a.last)),
		})
	}
	return out
}

// RankByRecency returns the n most recent customers, lowest recency first.
func RankByRecency(rows []models.RFM, n int) []models.RFM {
	return rankRFM(rows, n, func(a, b models.RFM) bool { return a.Recency < b.Recency })
}

// RankByFrequency returns the n customers with the most orders.
func RankByFrequency(rows []models.RFM, n int) []models.RFM {
	return rankRFM(rows, n, func(a, b models.RFM) bool { return a.Frequency > b.Frequency })
}

// RankByMonetary returns the n customers who spent the most.
func RankByMonetary(rows []models.RFM, n int) []models.RFM {
	return rankRFM(rows, n, func(a, b models.RFM) bool { return a.Monetary.GreaterThan(b.Monetary) })
}

func rankRFM(rows []models.RFM, n int, less func(a, b models.RFM) bool) []models.RFM {
	out := make([]models.RFM, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return limit(out, n)
}
