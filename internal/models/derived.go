package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for day buckets on the wire.
const DateLayout = "2006-01-02"

// Date is a calendar day. It marshals to JSON as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar date as written, without converting
// between timezones.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DaysSince returns the number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Sub(other.Time).Hours() / 24)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	t, err := time.Parse(`"`+DateLayout+`"`, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// DailyOrders is one day bucket of the daily orders view.
type DailyOrders struct {
	Date       Date            `json:"date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// CategorySales is the summed item count of one product category.
type CategorySales struct {
	Category string          `json:"product_category_english"`
	Cnt      decimal.Decimal `json:"cnt"`
}

// CityCustomers is the number of distinct customers in one city.
type CityCustomers struct {
	City          string `json:"customer_city"`
	CustomerCount int    `json:"customer_count"`
}

// PaymentMix is the number of distinct orders paid with one payment type.
type PaymentMix struct {
	PaymentType string `json:"payment_type"`
	OrderCount  int    `json:"order_count"`
}

// SellerSales is the summed item price of one seller.
type SellerSales struct {
	SellerID string          `json:"seller_id"`
	Sales    decimal.Decimal `json:"sales"`
}

// ReviewDistribution is the number of distinct products reviewed with one score.
type ReviewDistribution struct {
	ReviewScore string `json:"review_score"`
	ReviewCount int    `json:"review_count"`
}

// RFM holds the recency, frequency and monetary value of one customer.
type RFM struct {
	CustomerUniqueID string `json:"customer_unique_id"`

	// MaxOrderTimestamp is the customer's latest purchase.
	MaxOrderTimestamp time.Time `json:"max_order_timestamp"`

	// Frequency is the number of distinct orders.
	Frequency int `json:"frequency"`

	// Monetary is the summed price of every item the customer bought.
	Monetary decimal.Decimal `json:"monetary"`

	// Recency is the days between the latest purchase date in the filtered
	// data and this customer's latest purchase date.
	Recency int `json:"recency"`
}
