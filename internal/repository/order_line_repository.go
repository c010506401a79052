// Package repository reads imported order lines back out of ClickHouse.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
	"github.com/navid-fn/ecomdash/internal/storage"
)

// columns selects money as text so it decodes losslessly into decimals.
const columns = `order_id, customer_unique_id, customer_city,
	order_purchase_timestamp, order_delivered_customer_date,
	product_category_english, seller_id, toString(price) AS price,
	payment_type, review_score, product_id, toString(cnt) AS cnt`

type orderLineRow struct {
	OrderID                    string     `gorm:"column:order_id"`
	CustomerUniqueID           string     `gorm:"column:customer_unique_id"`
	CustomerCity               string     `gorm:"column:customer_city"`
	OrderPurchaseTimestamp     time.Time  `gorm:"column:order_purchase_timestamp"`
	OrderDeliveredCustomerDate *time.Time `gorm:"column:order_delivered_customer_date"`
	ProductCategoryEnglish     string     `gorm:"column:product_category_english"`
	SellerID                   string     `gorm:"column:seller_id"`
	Price                      string     `gorm:"column:price"`
	PaymentType                string     `gorm:"column:payment_type"`
	ReviewScore                string     `gorm:"column:review_score"`
	ProductID                  string     `gorm:"column:product_id"`
	Cnt                        string     `gorm:"column:cnt"`
}

// toOrderLine converts a row. Timestamps come back in the server's zone
// and are returned to the UTC wall-clock the loader produces.
func (r orderLineRow) toOrderLine() (models.OrderLine, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return models.OrderLine{}, fmt.Errorf("order %s: price %q: %w", r.OrderID, r.Price, err)
	}
	cnt, err := decimal.NewFromString(r.Cnt)
	if err != nil {
		return models.OrderLine{}, fmt.Errorf("order %s: cnt %q: %w", r.OrderID, r.Cnt, err)
	}

	line := models.OrderLine{
		OrderID:                r.OrderID,
		CustomerUniqueID:       r.CustomerUniqueID,
		CustomerCity:           r.CustomerCity,
		OrderPurchaseTimestamp: r.OrderPurchaseTimestamp.UTC(),
		ProductCategoryEnglish: r.ProductCategoryEnglish,
		SellerID:               r.SellerID,
		Price:                  price,
		PaymentType:            r.PaymentType,
		ReviewScore:            r.ReviewScore,
		ProductID:              r.ProductID,
		Cnt:                    cnt,
	}
	if r.OrderDeliveredCustomerDate != nil {
		line.OrderDeliveredCustomerDate = r.OrderDeliveredCustomerDate.UTC()
	}
	return line, nil
}

// OrderLineRepository reads the order_line table.
type OrderLineRepository interface {
	// All returns every order line ordered by purchase time.
	All(ctx context.Context) ([]models.OrderLine, error)

	// Count returns the number of stored order lines.
	Count(ctx context.Context) (int64, error)

	// Load returns every order line as a dataset table.
	Load(ctx context.Context) (*dataset.Table, error)
}

type gormOrderLineRepository struct {
	db *gorm.DB
}

func NewGormOrderLineRepository(db *gorm.DB) OrderLineRepository {
	return &gormOrderLineRepository{db: db}
}

func (r *gormOrderLineRepository) All(ctx context.Context) ([]models.OrderLine, error) {
	var rows []orderLineRow
	err := r.db.WithContext(ctx).
		Table(storage.Table).
		Select(columns).
		Order("order_purchase_timestamp, order_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", storage.Table, err)
	}

	lines := make([]models.OrderLine, 0, len(rows))
	for _, row := range rows {
		line, err := row.toOrderLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (r *gormOrderLineRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(storage.Table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", storage.Table, err)
	}
	return count, nil
}

func (r *gormOrderLineRepository) Load(ctx context.Context) (*dataset.Table, error) {
	lines, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.NewTable(lines), nil
}
