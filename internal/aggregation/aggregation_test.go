package aggregation

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02 15:04:05", s)
	require.NoError(t, err)
	return v
}

func day(t *testing.T, s string) models.Date {
	t.Helper()
	v, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return models.DateOf(v)
}

type lineOpt func(*models.OrderLine)

func withCity(c string) lineOpt { return func(l *models.OrderLine) { l.CustomerCity = c } }
func withCategory(c string) lineOpt { return func(l *models.OrderLine) { l.ProductCategoryEnglish = c } }
func withSeller(s string) lineOpt { return func(l *models.OrderLine) { l.SellerID = s } }
func withPayment(p string) lineOpt { return func(l *models.OrderLine) { l.PaymentType = p } }
func withReview(r string) lineOpt { return func(l *models.OrderLine) { l.ReviewScore = r } }
func withProduct(p string) lineOpt { return func(l *models.OrderLine) { l.ProductID = p } }
func withCnt(c int64) lineOpt { return func(l *models.OrderLine) { l.Cnt = decimal.NewFromInt(c) } }

func line(t *testing.T, order, customer, at string, price int64, opts ...lineOpt) models.OrderLine {
	l := models.OrderLine{
		OrderID:                order,
		CustomerUniqueID:       customer,
		CustomerCity:           "sao paulo",
		OrderPurchaseTimestamp: ts(t, at),
		ProductCategoryEnglish: "bed_bath_table",
		SellerID:               "seller-1",
		Price:                  decimal.NewFromInt(price),
		PaymentType:            "credit_card",
		ReviewScore:            "5",
		ProductID:              "product-" + order,
		Cnt:                    decimal.NewFromInt(1),
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func TestDailyOrdersDistinctOrdersSummedPrices(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "A", "c1", "2024-01-01 09:00:00", 10),
		line(t, "A", "c1", "2024-01-01 09:00:00", 20),
		line(t, "A", "c1", "2024-01-01 09:00:00", 30),
		line(t, "B", "c2", "2024-01-01 18:30:00", 5),
		line(t, "C", "c3", "2024-01-03 00:00:01", 7),
	})

	got := DailyOrders(table)

	require.Len(t, got, 2, "days without orders must not be zero-filled")
	assert.Equal(t, "2024-01-01", got[0].Date.String())
	assert.Equal(t, 2, got[0].OrderCount)
	assert.True(t, got[0].Revenue.Equal(decimal.NewFromInt(65)), "got revenue %s", got[0].Revenue)
	assert.Equal(t, "2024-01-03", got[1].Date.String())
	assert.Equal(t, 1, got[1].OrderCount)
}

func TestDailyOrdersSingleMultiLineOrder(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "A", "c1", "2024-01-01 09:00:00", 10),
		line(t, "A", "c1", "2024-01-01 09:00:00", 20),
		line(t, "A", "c1", "2024-01-01 09:00:00", 30),
	})

	got := DailyOrders(table)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].OrderCount)
	assert.True(t, got[0].Revenue.Equal(decimal.NewFromInt(60)))
}

func TestDailyOrdersAscending(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "C", "c3", "2024-03-01 10:00:00", 1),
		line(t, "A", "c1", "2024-01-01 10:00:00", 1),
		line(t, "B", "c2", "2024-02-01 10:00:00", 1),
	})

	got := DailyOrders(table)

	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date.Time))
	}
}

func TestCategorySalesAndRankings(t *testing.T) {
	var lines []models.OrderLine
	counts := map[string]int64{"a": 3, "b": 9, "c": 1, "d": 5, "e": 7, "f": 2, "g": 4}
	for _, cat := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		lines = append(lines, line(t, "o-"+cat, "c", "2024-01-01 10:00:00", 1, withCategory(cat), withCnt(counts[cat])))
	}
	table := dataset.NewTable(lines)

	sales := CategorySales(table)
	require.Len(t, sales, 7)
	for i := 1; i < len(sales); i++ {
		assert.True(t, sales[i-1].Cnt.GreaterThanOrEqual(sales[i].Cnt))
	}

	best := BestCategories(sales, CategoryRankSize)
	worst := WorstCategories(sales, CategoryRankSize)
	assert.Equal(t, []string{"b", "e", "d", "g", "a"}, categoryNames(best))
	assert.Equal(t, []string{"c", "f", "a", "g", "d"}, categoryNames(worst))
	assert.Equal(t, "b", sales[0].Category, "rankings must not reorder the input")
}

func categoryNames(rows []models.CategorySales) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Category
	}
	return out
}

func TestTopCitiesTruncationIsIdempotent(t *testing.T) {
	var lines []models.OrderLine
	for city := 0; city < 15; city++ {
		for customer := 0; customer <= city%6; customer++ {
			lines = append(lines, line(t,
				fmt.Sprintf("o-%d-%d", city, customer),
				fmt.Sprintf("cust-%d-%d", city, customer),
				"2024-01-01 10:00:00", 1,
				withCity(fmt.Sprintf("city-%02d", city))))
		}
	}
	// repeat customers in one city must count once
	lines = append(lines, line(t, "again", "cust-0-0", "2024-01-02 10:00:00", 1, withCity("city-00")))
	table := dataset.NewTable(lines)

	top := TopCities(table)
	full := CityCustomerCounts(table)

	require.LessOrEqual(t, len(top), TopCitiesLimit)
	require.Len(t, full, 15)
	assert.Equal(t, full[:TopCitiesLimit], top)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].CustomerCount, top[i].CustomerCount)
	}

	counts := map[string]int{}
	for _, c := range full {
		counts[c.City] = c.CustomerCount
	}
	assert.Equal(t, 1, counts["city-00"])
}

func TestSortTiesKeepEncounterOrder(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "1", "c1", "2024-01-01 10:00:00", 5, withSeller("s-z")),
		line(t, "2", "c2", "2024-01-01 11:00:00", 5, withSeller("s-a")),
		line(t, "3", "c3", "2024-01-01 12:00:00", 9, withSeller("s-m")),
		line(t, "4", "c4", "2024-01-01 13:00:00", 5, withSeller("s-b")),
	})

	for i := 0; i < 5; i++ {
		got := TopSellers(table)
		require.Len(t, got, 4)
		assert.Equal(t, []string{"s-m", "s-z", "s-a", "s-b"},
			[]string{got[0].SellerID, got[1].SellerID, got[2].SellerID, got[3].SellerID})
	}
}

func TestPaymentTypesDistinctOrdersTopFour(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "1", "c", "2024-01-01 10:00:00", 1, withPayment("credit_card")),
		line(t, "1", "c", "2024-01-01 10:00:00", 1, withPayment("credit_card")),
		line(t, "2", "c", "2024-01-01 10:00:00", 1, withPayment("credit_card")),
		line(t, "3", "c", "2024-01-01 10:00:00", 1, withPayment("boleto")),
		line(t, "4", "c", "2024-01-01 10:00:00", 1, withPayment("voucher")),
		line(t, "5", "c", "2024-01-01 10:00:00", 1, withPayment("debit_card")),
		line(t, "6", "c", "2024-01-01 10:00:00", 1, withPayment("not_defined")),
		line(t, "7", "c", "2024-01-01 10:00:00", 1, withPayment("boleto")),
	})

	got := PaymentTypes(table)

	require.Len(t, got, PaymentTypesLimit)
	assert.Equal(t, models.PaymentMix{PaymentType: "credit_card", OrderCount: 2}, got[0])
	assert.Equal(t, models.PaymentMix{PaymentType: "boleto", OrderCount: 2}, got[1])
	assert.Len(t, PaymentOrderCounts(table), 5)
}

func TestTopSellersSumsEveryLine(t *testing.T) {
	var lines []models.OrderLine
	for i := 0; i < 12; i++ {
		lines = append(lines, line(t, fmt.Sprint(i), "c", "2024-01-01 10:00:00", int64(i+1), withSeller(fmt.Sprintf("s%d", i))))
	}
	lines = append(lines, line(t, "0", "c", "2024-01-01 10:00:00", 100, withSeller("s0")))
	table := dataset.NewTable(lines)

	got := TopSellers(table)

	require.Len(t, got, TopSellersLimit)
	assert.Equal(t, "s0", got[0].SellerID)
	assert.True(t, got[0].Sales.Equal(decimal.NewFromInt(101)))
}

func TestReviewScoresCountDistinctProducts(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "1", "c", "2024-01-01 10:00:00", 1, withReview("5"), withProduct("p1")),
		line(t, "2", "c", "2024-01-01 10:00:00", 1, withReview("5"), withProduct("p1")),
		line(t, "3", "c", "2024-01-01 10:00:00", 1, withReview("5"), withProduct("p2")),
		line(t, "4", "c", "2024-01-01 10:00:00", 1, withReview("1"), withProduct("p3")),
		line(t, "5", "c", "2024-01-01 10:00:00", 1, withReview("1"), withProduct("p4")),
		line(t, "6", "c", "2024-01-01 10:00:00", 1, withReview("1"), withProduct("p5")),
		line(t, "7", "c", "2024-01-01 10:00:00", 1, withReview("3"), withProduct("p1")),
	})

	got := ReviewScores(table)

	assert.Equal(t, []models.ReviewDistribution{
		{ReviewScore: "1", ReviewCount: 3},
		{ReviewScore: "5", ReviewCount: 2},
		{ReviewScore: "3", ReviewCount: 1},
	}, got)
}

func TestRFMRecencyRelativeToLatestPurchase(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "A", "alice", "2024-01-01 10:00:00", 10),
		line(t, "A", "alice", "2024-01-01 10:00:00", 15),
		line(t, "B", "alice", "2024-01-05 23:59:59", 20),
		line(t, "C", "bob", "2024-01-10 00:00:01", 30),
		line(t, "D", "carol", "2024-01-10 22:00:00", 5),
	})

	got := RFM(table)

	require.Len(t, got, 3)
	byID := map[string]models.RFM{}
	for _, r := range got {
		require.GreaterOrEqual(t, r.Recency, 0)
		byID[r.CustomerUniqueID] = r
	}

	assert.Equal(t, 5, byID["alice"].Recency)
	assert.Equal(t, 2, byID["alice"].Frequency)
	assert.True(t, byID["alice"].Monetary.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, ts(t, "2024-01-05 23:59:59"), byID["alice"].MaxOrderTimestamp)

	// same calendar day as the latest purchase, earlier in the day
	assert.Equal(t, 0, byID["bob"].Recency)
	assert.Equal(t, 0, byID["carol"].Recency)

	assert.Equal(t, []string{"alice", "bob", "carol"},
		[]string{got[0].CustomerUniqueID, got[1].CustomerUniqueID, got[2].CustomerUniqueID})
}

func TestRFMRankings(t *testing.T) {
	rows := []models.RFM{
		{CustomerUniqueID: "a", Recency: 3, Frequency: 1, Monetary: decimal.NewFromInt(10)},
		{CustomerUniqueID: "b", Recency: 0, Frequency: 4, Monetary: decimal.NewFromInt(5)},
		{CustomerUniqueID: "c", Recency: 1, Frequency: 2, Monetary: decimal.NewFromInt(50)},
	}

	assert.Equal(t, "b", RankByRecency(rows, 1)[0].CustomerUniqueID)
	assert.Equal(t, "b", RankByFrequency(rows, 1)[0].CustomerUniqueID)
	assert.Equal(t, "c", RankByMonetary(rows, 1)[0].CustomerUniqueID)
	assert.Len(t, RankByMonetary(rows, 10), 3)
	assert.Equal(t, "a", rows[0].CustomerUniqueID, "rankings must not reorder the input")
}

func TestEmptyTableYieldsEmptyViews(t *testing.T) {
	table := dataset.NewTable(nil)

	d := Build(table)

	assert.Equal(t, 0, d.Rows)
	assert.NotNil(t, d.DailyOrders)
	assert.Empty(t, d.DailyOrders)
	assert.Empty(t, d.CategorySales)
	assert.Empty(t, d.TopCities)
	assert.Empty(t, d.PaymentTypes)
	assert.Empty(t, d.TopSellers)
	assert.Empty(t, d.ReviewScores)
	assert.NotNil(t, d.RFM)
	assert.Empty(t, d.RFM)
	assert.Empty(t, d.BestCategories())
	assert.Empty(t, d.WorstCategories())

	assert.Equal(t, 0, d.Summary.TotalOrders)
	assert.True(t, d.Summary.TotalRevenue.IsZero())
	assert.Zero(t, d.Summary.AvgRecency)
	assert.Zero(t, d.Summary.AvgFrequency)
	assert.True(t, d.Summary.AvgMonetary.IsZero())
}

func TestEndToEndExample(t *testing.T) {
	table := dataset.NewTable([]models.OrderLine{
		line(t, "A", "cust-x", "2024-01-01 08:00:00", 5, withCity("X")),
		line(t, "A", "cust-x", "2024-01-01 08:00:00", 15, withCity("X")),
		line(t, "B", "cust-y", "2024-01-02 12:00:00", 20, withCity("Y")),
	})
	sel := dataset.Selection{Start: day(t, "2024-01-01"), End: day(t, "2024-01-01"), City: dataset.All, Category: dataset.All}

	d := Build(dataset.Filter(table, sel))

	require.Len(t, d.DailyOrders, 1)
	assert.Equal(t, "2024-01-01", d.DailyOrders[0].Date.String())
	assert.Equal(t, 1, d.DailyOrders[0].OrderCount)
	assert.True(t, d.DailyOrders[0].Revenue.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, []models.CityCustomers{{City: "X", CustomerCount: 1}}, d.TopCities)
}

func TestSummarize(t *testing.T) {
	daily := []models.DailyOrders{
		{OrderCount: 2, Revenue: decimal.NewFromInt(30)},
		{OrderCount: 3, Revenue: decimal.RequireFromString("12.5")},
	}
	rfm := []models.RFM{
		{Recency: 0, Frequency: 1, Monetary: decimal.NewFromInt(10)},
		{Recency: 3, Frequency: 2, Monetary: decimal.NewFromInt(20)},
		{Recency: 6, Frequency: 4, Monetary: decimal.RequireFromString("12.5")},
	}

	s := Summarize(daily, rfm)

	assert.Equal(t, 5, s.TotalOrders)
	assert.True(t, s.TotalRevenue.Equal(decimal.RequireFromString("42.5")))
	assert.Equal(t, 3, s.Customers)
	assert.InDelta(t, 3.0, s.AvgRecency, 1e-9)
	assert.InDelta(t, 7.0/3.0, s.AvgFrequency, 1e-9)
	avgMonetary, _ := s.AvgMonetary.Float64()
	assert.InDelta(t, 42.5/3, avgMonetary, 1e-9)
}
