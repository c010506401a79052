// Package dataset loads the merged order-line table and filters it by the
// dashboard selection.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/ecomdash/internal/models"
)

// Column names of the merged dataset.
const (
	ColOrderID                    = "order_id"
	ColCustomerUniqueID           = "customer_unique_id"
	ColCustomerCity               = "customer_city"
	ColOrderPurchaseTimestamp     = "order_purchase_timestamp"
	ColOrderDeliveredCustomerDate = "order_delivered_customer_date"
	ColProductCategoryEnglish     = "product_category_english"
	ColSellerID                   = "seller_id"
	ColPrice                      = "price"
	ColPaymentType                = "payment_type"
	ColReviewScore                = "review_score"
	ColProductID                  = "product_id"
	ColCnt                        = "cnt"
)

// RequiredColumns lists every column Load expects in the header.
var RequiredColumns = []string{
	ColOrderID,
	ColCustomerUniqueID,
	ColCustomerCity,
	ColOrderPurchaseTimestamp,
	ColOrderDeliveredCustomerDate,
	ColProductCategoryEnglish,
	ColSellerID,
	ColPrice,
	ColPaymentType,
	ColReviewScore,
	ColProductID,
	ColCnt,
}

// timestampLayouts are tried in order when parsing timestamp columns.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	models.DateLayout,
}

// MalformedPolicy decides what happens to a row that cannot be parsed.
type MalformedPolicy int

const (
	// PolicyFail aborts the whole load with a LoadError.
	PolicyFail MalformedPolicy = iota

	// PolicyDrop skips the row and counts it in Table.Dropped.
	PolicyDrop
)

func (p MalformedPolicy) String() string {
	switch p {
	case PolicyDrop:
		return "drop"
	default:
		return "fail"
	}
}

// ParsePolicy parses "fail" or "drop".
func ParsePolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return PolicyFail, nil
	case "drop":
		return PolicyDrop, nil
	default:
		return PolicyFail, fmt.Errorf("unknown malformed row policy %q (want fail or drop)", s)
	}
}

type loadOptions struct {
	delimiter rune
	policy    MalformedPolicy
	logger    *logrus.Logger
}

// LoadOption configures Load and Read.
type LoadOption func(*loadOptions)

// WithDelimiter sets the field delimiter. Default ','.
func WithDelimiter(d rune) LoadOption {
	return func(o *loadOptions) { o.delimiter = d }
}

// WithPolicy sets the malformed row policy. Default PolicyFail.
func WithPolicy(p MalformedPolicy) LoadOption {
	return func(o *loadOptions) { o.policy = p }
}

// WithLogger sets the logger used to report dropped rows.
func WithLogger(l *logrus.Logger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

// Load reads the delimited file at path into a Table sorted ascending by
// order_purchase_timestamp. Every failure is a *LoadError.
func Load(path string, opts ...LoadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := Read(f, opts...)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return t, nil
}

// Read is Load over an arbitrary reader.
func Read(r io.Reader, opts ...LoadOption) (*Table, error) {
	o := loadOptions{delimiter: ',', policy: PolicyFail}
	for _, opt := range opts {
		opt(&o)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
		dataframe.WithDelimiter(o.delimiter),
	)
	if df.Err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read csv: %w", df.Err)}
	}

	cols, err := columns(df)
	if err != nil {
		return nil, err
	}

	n := df.Nrow()
	lines := make([]models.OrderLine, 0, n)
	dropped := 0
	for i := 0; i < n; i++ {
		line, err := parseRow(cols, i)
		if err != nil {
			// header is line 1
			fileLine := i + 2
			var re *rowError
			errors.As(err, &re)
			if o.policy == PolicyDrop {
				dropped++
				if o.logger != nil {
					o.logger.Warnf("Dropping malformed row at line %d: %v", fileLine, err)
				}
				continue
			}
			return nil, &LoadError{
				Line:   fileLine,
				Column: re.column,
				Err:    fmt.Errorf("%w: %w", ErrMalformedRow, re.err),
			}
		}
		lines = append(lines, line)
	}

	t := NewTable(lines)
	t.dropped = dropped
	return t, nil
}

// columns extracts the required columns as string slices.
func columns(df dataframe.DataFrame) (map[string][]string, error) {
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[strings.TrimSpace(name)] = true
	}

	var missing []string
	for _, name := range RequiredColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{Missing: missing, Err: ErrMissingColumns}
	}

	cols := make(map[string][]string, len(RequiredColumns))
	for _, name := range df.Names() {
		key := strings.TrimSpace(name)
		if !present[key] {
			continue
		}
		cols[key] = df.Col(name).Records()
	}
	return cols, nil
}

func parseRow(cols map[string][]string, i int) (models.OrderLine, error) {
	get := func(col string) string {
		return strings.TrimSpace(cols[col][i])
	}

	purchased, err := parseTimestamp(get(ColOrderPurchaseTimestamp))
	if err != nil {
		return models.OrderLine{}, &rowError{column: ColOrderPurchaseTimestamp, err: err}
	}

	var delivered time.Time
	if raw := get(ColOrderDeliveredCustomerDate); raw != "" {
		delivered, err = parseTimestamp(raw)
		if err != nil {
			return models.OrderLine{}, &rowError{column: ColOrderDeliveredCustomerDate, err: err}
		}
	}

	price, err := decimal.NewFromString(get(ColPrice))
	if err != nil {
		return models.OrderLine{}, &rowError{column: ColPrice, err: err}
	}
	if price.IsNegative() {
		return models.OrderLine{}, &rowError{column: ColPrice, err: fmt.Errorf("negative price %s", price)}
	}

	cnt, err := decimal.NewFromString(get(ColCnt))
	if err != nil {
		return models.OrderLine{}, &rowError{column: ColCnt, err: err}
	}

	return models.OrderLine{
		OrderID:                    get(ColOrderID),
		CustomerUniqueID:           get(ColCustomerUniqueID),
		CustomerCity:               get(ColCustomerCity),
		OrderPurchaseTimestamp:     purchased,
		OrderDeliveredCustomerDate: delivered,
		ProductCategoryEnglish:     get(ColProductCategoryEnglish),
		SellerID:                   get(ColSellerID),
		Price:                      price,
		PaymentType:                get(ColPaymentType),
		ReviewScore:                get(ColReviewScore),
		ProductID:                  get(ColProductID),
		Cnt:                        cnt,
	}, nil
}

// parseTimestamp parses raw with the first matching layout. Values without
// an offset are read as UTC wall-clock time.
func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
