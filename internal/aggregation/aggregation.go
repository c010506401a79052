// Package aggregation derives the dashboard views from a filtered table.
//
// Every transform is pure: it reads the table and returns a fresh slice,
// empty (never nil) when the table has no rows. Sorted views use a stable
// sort over groups in first-encounter order, so equal keys keep the order
// in which they first appeared.
package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
)

const (
	TopCitiesLimit    = 10
	PaymentTypesLimit = 4
	TopSellersLimit   = 10

	// CategoryRankSize is how many categories the best/worst charts show.
	CategoryRankSize = 5
)

// DailyOrders buckets rows by purchase date, counting distinct orders and
// summing every line's price. Days without orders are absent.
func DailyOrders(t *dataset.Table) []models.DailyOrders {
	type acc struct {
		date    models.Date
		orders  distinct
		revenue decimal.Decimal
	}
	g := groupBy(t,
		func(l models.OrderLine) string { return models.DateOf(l.OrderPurchaseTimestamp).String() },
		func(a *acc, l models.OrderLine) {
			a.date = models.DateOf(l.OrderPurchaseTimestamp)
			a.orders.add(l.OrderID)
			a.revenue = a.revenue.Add(l.Price)
		})

	out := make([]models.DailyOrders, 0, len(g.keys))
	for _, k := range g.keys {
		a := g.accs[k]
		out = append(out, models.DailyOrders{
			Date:       a.date,
			OrderCount: a.orders.len(),
			Revenue:    a.revenue,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// CategorySales sums cnt per product category, largest first.
func CategorySales(t *dataset.Table) []models.CategorySales {
	g := groupBy(t,
		func(l models.OrderLine) string { return l.ProductCategoryEnglish },
		func(a *decimal.Decimal, l models.OrderLine) { *a = a.Add(l.Cnt) })

	out := make([]models.CategorySales, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, models.CategorySales{Category: k, Cnt: *g.accs[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cnt.GreaterThan(out[j].Cnt) })
	return out
}

// BestCategories returns the first n rows of a CategorySales result.
func BestCategories(sales []models.CategorySales, n int) []models.CategorySales {
	out := make([]models.CategorySales, len(sales))
	copy(out, sales)
	return limit(out, n)
}

// WorstCategories returns the n lowest selling categories, lowest first.
func WorstCategories(sales []models.CategorySales, n int) []models.CategorySales {
	out := make([]models.CategorySales, len(sales))
	copy(out, sales)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cnt.LessThan(out[j].Cnt) })
	return limit(out, n)
}

// CityCustomerCounts counts distinct customers per city, largest first.
func CityCustomerCounts(t *dataset.Table) []models.CityCustomers {
	g := groupBy(t,
		func(l models.OrderLine) string { return l.CustomerCity },
		func(a *distinct, l models.OrderLine) { a.add(l.CustomerUniqueID) })

	out := make([]models.CityCustomers, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, models.CityCustomers{City: k, CustomerCount: g.accs[k].len()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CustomerCount > out[j].CustomerCount })
	return out
}

// TopCities is CityCustomerCounts truncated to TopCitiesLimit.
func TopCities(t *dataset.Table) []models.CityCustomers {
	return limit(CityCustomerCounts(t), TopCitiesLimit)
}

// PaymentOrderCounts counts distinct orders per payment type, largest first.
func PaymentOrderCounts(t *dataset.Table) []models.PaymentMix {
	g := groupBy(t,
		func(l models.OrderLine) string { return l.PaymentType },
		func(a *distinct, l models.OrderLine) { a.add(l.OrderID) })

	out := make([]models.PaymentMix, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, models.PaymentMix{PaymentType: k, OrderCount: g.accs[k].len()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderCount > out[j].OrderCount })
	return out
}

// PaymentTypes is PaymentOrderCounts truncated to PaymentTypesLimit.
func PaymentTypes(t *dataset.Table) []models.PaymentMix {
	return limit(PaymentOrderCounts(t), PaymentTypesLimit)
}

// SellerTotals sums line prices per seller, largest first.
func SellerTotals(t *dataset.Table) []models.SellerSales {
	g := groupBy(t,
		func(l models.OrderLine) string { return l.SellerID },
		func(a *decimal.Decimal, l models.OrderLine) { *a = a.Add(l.Price) })

	out := make([]models.SellerSales, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, models.SellerSales{SellerID: k, Sales: *g.accs[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sales.GreaterThan(out[j].Sales) })
	return out
}

// TopSellers is SellerTotals truncated to TopSellersLimit.
func TopSellers(t *dataset.Table) []models.SellerSales {
	return limit(SellerTotals(t), TopSellersLimit)
}

// ReviewScores counts distinct products per review score, largest first.
func ReviewScores(t *dataset.Table) []models.ReviewDistribution {
	g := groupBy(t,
		func(l models.OrderLine) string { return l.ReviewScore },
		func(a *distinct, l models.OrderLine) { a.add(l.ProductID) })

	out := make([]models.ReviewDistribution, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, models.ReviewDistribution{ReviewScore: k, ReviewCount: g.accs[k].len()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewCount > out[j].ReviewCount })
	return out
}
