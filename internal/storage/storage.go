// Package storage writes order lines into ClickHouse.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/navid-fn/ecomdash/internal/models"
)

// Table is the ClickHouse table order lines are imported into.
const Table = "order_line"

// OrderLineStorage defines the interface for persisting order lines.
// Implementations must be safe for concurrent use.
type OrderLineStorage interface {
	// CreateOrderLines inserts a batch of order lines into the database.
	CreateOrderLines(ctx context.Context, lines []models.OrderLine) error

	// Truncate removes every imported order line.
	Truncate(ctx context.Context) error

	// Close releases database connection resources.
	Close() error
}

// clickhouseStorage implements OrderLineStorage using the native ClickHouse driver.
type clickhouseStorage struct {
	conn driver.Conn
}

// NewClickHouseStorage creates a new ClickHouse storage connection.
// It parses the DSN, opens a connection, and verifies connectivity with a ping.
// Returns an error if connection cannot be established within 5 seconds.
func NewClickHouseStorage(dsn string) (OrderLineStorage, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &clickhouseStorage{conn: conn}, nil
}

// CreateOrderLines inserts order lines using ClickHouse batch insert.
// All lines in the batch share the same inserted_at timestamp.
func (s *clickhouseStorage) CreateOrderLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO `+Table+` (
			order_id, customer_unique_id, customer_city,
			order_purchase_timestamp, order_delivered_customer_date,
			product_category_english, seller_id, price,
			payment_type, review_score, product_id, cnt,
			inserted_at
		)
	`)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, l := range lines {
		if err := batch.Append(append(rowValues(l), now)...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append order %s: %w", l.OrderID, err)
		}
	}

	return batch.Send()
}

// Truncate empties the order line table.
func (s *clickhouseStorage) Truncate(ctx context.Context) error {
	return s.conn.Exec(ctx, "TRUNCATE TABLE IF EXISTS "+Table)
}

// Close closes the ClickHouse connection.
func (s *clickhouseStorage) Close() error {
	return s.conn.Close()
}

// rowValues returns l's column values in insert order. An undelivered
// order stores NULL rather than the zero time.
func rowValues(l models.OrderLine) []any {
	var delivered *time.Time
	if l.Delivered() {
		d := l.OrderDeliveredCustomerDate
		delivered = &d
	}
	return []any{
		l.OrderID,
		l.CustomerUniqueID,
		l.CustomerCity,
		l.OrderPurchaseTimestamp,
		delivered,
		l.ProductCategoryEnglish,
		l.SellerID,
		l.Price,
		l.PaymentType,
		l.ReviewScore,
		l.ProductID,
		l.Cnt,
	}
}

// Chunks splits lines into consecutive batches of at most size lines.
func Chunks(lines []models.OrderLine, size int) [][]models.OrderLine {
	if size <= 0 {
		size = len(lines)
	}
	var out [][]models.OrderLine
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		out = append(out, lines[start:end])
	}
	return out
}
