package aggregation

import (
	"github.com/shopspring/decimal"

	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
)

// CustomerRankSize is how many customers each RFM ranking shows.
const CustomerRankSize = 5

// Summary holds the scalar metrics shown above the charts. Means over an
// empty view are zero.
type Summary struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Customers    int             `json:"customers"`
	AvgRecency   float64         `json:"avg_recency"`
	AvgFrequency float64         `json:"avg_frequency"`
	AvgMonetary  decimal.Decimal `json:"avg_monetary"`
}

// Summarize derives the metrics from the daily orders and RFM views.
func Summarize(daily []models.DailyOrders, rfm []models.RFM) Summary {
	s := Summary{TotalRevenue: decimal.Zero, AvgMonetary: decimal.Zero}
	for _, d := range daily {
		s.TotalOrders += d.OrderCount
		s.TotalRevenue = s.TotalRevenue.Add(d.Revenue)
	}

	s.Customers = len(rfm)
	if s.Customers == 0 {
		return s
	}

	var recency, frequency int
	monetary := decimal.Zero
	for _, r := range rfm {
		recency += r.Recency
		frequency += r.Frequency
		monetary = monetary.Add(r.Monetary)
	}
	n := float64(s.Customers)
	s.AvgRecency = float64(recency) / n
	s.AvgFrequency = float64(frequency) / n
	s.AvgMonetary = monetary.Div(decimal.NewFromInt(int64(s.Customers)))
	return s
}

// Dashboard is every derived view of one filtered table.
type Dashboard struct {
	Rows          int                         `json:"rows"`
	DailyOrders   []models.DailyOrders        `json:"daily_orders"`
	CategorySales []models.CategorySales      `json:"category_sales"`
	TopCities     []models.CityCustomers      `json:"top_cities"`
	PaymentTypes  []models.PaymentMix         `json:"payment_types"`
	TopSellers    []models.SellerSales        `json:"top_sellers"`
	ReviewScores  []models.ReviewDistribution `json:"review_scores"`
	RFM           []models.RFM                `json:"rfm"`
	Summary       Summary                     `json:"summary"`
}

// Build runs all seven transforms over t. They are independent, so the
// order does not matter.
func Build(t *dataset.Table) *Dashboard {
	d := &Dashboard{
		Rows:          t.Len(),
		DailyOrders:   DailyOrders(t),
		CategorySales: CategorySales(t),
		TopCities:     TopCities(t),
		PaymentTypes:  PaymentTypes(t),
		TopSellers:    TopSellers(t),
		ReviewScores:  ReviewScores(t),
		RFM:           RFM(t),
	}
	d.Summary = Summarize(d.DailyOrders, d.RFM)
	return d
}

// BestCategories is the head of the category ranking.
func (d *Dashboard) BestCategories() []models.CategorySales {
	return BestCategories(d.CategorySales, CategoryRankSize)
}

// WorstCategories is the tail of the category ranking, lowest first.
func (d *Dashboard) WorstCategories() []models.CategorySales {
	return WorstCategories(d.CategorySales, CategoryRankSize)
}

// TopCustomers groups the three RFM rankings.
type TopCustomers struct {
	ByRecency   []models.RFM `json:"by_recency"`
	ByFrequency []models.RFM `json:"by_frequency"`
	ByMonetary  []models.RFM `json:"by_monetary"`
}

// TopCustomers ranks the RFM view by each measure.
func (d *Dashboard) TopCustomers() TopCustomers {
	return TopCustomers{
		ByRecency:   RankByRecency(d.RFM, CustomerRankSize),
		ByFrequency: RankByFrequency(d.RFM, CustomerRankSize),
		ByMonetary:  RankByMonetary(d.RFM, CustomerRankSize),
	}
}
