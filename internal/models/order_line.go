// Package models defines the domain models used across the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine represents one (order, item) row of the merged order dataset.
// An order with several items appears as several OrderLines sharing OrderID.
type OrderLine struct {
	// OrderID identifies the order. Not unique per row.
	OrderID string `json:"order_id"`

	// CustomerUniqueID identifies the customer across orders.
	CustomerUniqueID string `json:"customer_unique_id"`

	// CustomerCity is the customer's city as written in the dataset.
	CustomerCity string `json:"customer_city"`

	// OrderPurchaseTimestamp is when the order was placed.
	// Kept as written in the source file, no timezone conversion.
	OrderPurchaseTimestamp time.Time `json:"order_purchase_timestamp"`

	// OrderDeliveredCustomerDate is when the order reached the customer.
	// Zero for orders that were never delivered.
	OrderDeliveredCustomerDate time.Time `json:"order_delivered_customer_date"`

	// ProductCategoryEnglish is the product category (e.g., "bed_bath_table").
	ProductCategoryEnglish string `json:"product_category_english"`

	// SellerID identifies the seller of the item.
	SellerID string `json:"seller_id"`

	// Price is the item price in BRL. Never negative.
	Price decimal.Decimal `json:"price"`

	// PaymentType is the payment method (e.g., "credit_card", "boleto").
	PaymentType string `json:"payment_type"`

	// ReviewScore is the review score given to the order ("1" to "5").
	ReviewScore string `json:"review_score"`

	// ProductID identifies the product.
	ProductID string `json:"product_id"`

	// Cnt is the pre-computed item count contributing to category sales.
	Cnt decimal.Decimal `json:"cnt"`
}

// Delivered reports whether the order has a delivery date.
func (l OrderLine) Delivered() bool {
	return !l.OrderDeliveredCustomerDate.IsZero()
}
