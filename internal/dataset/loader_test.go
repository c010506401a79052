package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "order_id,customer_unique_id,customer_city,order_purchase_timestamp,order_delivered_customer_date,product_category_english,seller_id,price,payment_type,review_score,product_id,cnt\n"

const sampleCSV = header +
	"B,cust-y,rio de janeiro,2024-01-02 12:00:00,2024-01-09 10:00:00,toys,seller-2,20.00,boleto,4,p-3,1\n" +
	"A,cust-x,sao paulo,2024-01-01 08:00:00,2024-01-05 16:20:00,bed_bath_table,seller-1,5.00,credit_card,5,p-1,1\n" +
	"A,cust-x,sao paulo,2024-01-01 08:00:00,2024-01-05 16:20:00,bed_bath_table,seller-1,15.50,credit_card,5,p-2,2\n" +
	"C,cust-z,sao paulo,2024-01-03 23:10:00,,toys,seller-2,7.25,voucher,1,p-3,1\n"

func TestReadSortsByPurchaseTimestamp(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Equal(t, 4, table.Len())
	assert.Equal(t, "A", table.At(0).OrderID)
	assert.Equal(t, "A", table.At(1).OrderID)
	assert.Equal(t, "p-1", table.At(0).ProductID, "equal timestamps keep file order")
	assert.Equal(t, "B", table.At(2).OrderID)
	assert.Equal(t, "C", table.At(3).OrderID)

	first := table.At(1)
	assert.Equal(t, "15.5", first.Price.String())
	assert.Equal(t, "2", first.Cnt.String())
	assert.Equal(t, "2024-01-05 16:20:00", first.OrderDeliveredCustomerDate.Format("2006-01-02 15:04:05"))
	assert.True(t, first.Delivered())

	assert.False(t, table.At(3).Delivered(), "empty delivery date means not delivered")
	assert.Equal(t, 0, table.Dropped())
}

func TestReadFilterSelectors(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"sao paulo", "rio de janeiro"}, table.Cities())
	assert.Equal(t, []string{"bed_bath_table", "toys"}, table.Categories())

	minDate, ok := table.MinDate()
	require.True(t, ok)
	maxDate, _ := table.MaxDate()
	assert.Equal(t, "2024-01-01", minDate.String())
	assert.Equal(t, "2024-01-03", maxDate.String())
}

func TestReadAcceptsTimestampLayouts(t *testing.T) {
	csv := header +
		"A,c,x,2024-01-01T08:00:00Z,2024-01-02,cat,s,1,credit_card,5,p,1\n" +
		"B,c,x,2024-01-01T09:00:00,2024-01-02 10:00,cat,s,1,credit_card,5,p,1\n"

	table, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestReadCustomDelimiter(t *testing.T) {
	csv := strings.ReplaceAll(sampleCSV, ",", ";")

	table, err := Read(strings.NewReader(csv), WithDelimiter(';'))
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
}

func TestReadMissingColumns(t *testing.T) {
	csv := "order_id,customer_unique_id,customer_city,order_purchase_timestamp,price\n" +
		"A,c,x,2024-01-01 08:00:00,1\n"

	_, err := Read(strings.NewReader(csv))
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, le.Missing, ColCnt)
	assert.Contains(t, le.Missing, ColSellerID)
	assert.NotContains(t, le.Missing, ColPrice)
}

func TestReadRaggedRows(t *testing.T) {
	csv := header + "A,c,x,2024-01-01 08:00:00\n"

	_, err := Read(strings.NewReader(csv))

	var le *LoadError
	require.ErrorAs(t, err, &le)
}

func TestReadMalformedRowPolicy(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"bad purchase timestamp", "X,c,x,yesterday,,cat,s,1,credit_card,5,p,1\n", ColOrderPurchaseTimestamp},
		{"empty purchase timestamp", "X,c,x,,,cat,s,1,credit_card,5,p,1\n", ColOrderPurchaseTimestamp},
		{"bad delivery date", "X,c,x,2024-01-01 08:00:00,soon,cat,s,1,credit_card,5,p,1\n", ColOrderDeliveredCustomerDate},
		{"bad price", "X,c,x,2024-01-01 08:00:00,,cat,s,free,credit_card,5,p,1\n", ColPrice},
		{"negative price", "X,c,x,2024-01-01 08:00:00,,cat,s,-3,credit_card,5,p,1\n", ColPrice},
		{"bad cnt", "X,c,x,2024-01-01 08:00:00,,cat,s,1,credit_card,5,p,many\n", ColCnt},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/fail", func(t *testing.T) {
			_, err := Read(strings.NewReader(sampleCSV + tt.row))

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.ErrorIs(t, err, ErrMalformedRow)
			assert.Equal(t, 6, le.Line)
			assert.Equal(t, tt.column, le.Column)
		})

		t.Run(tt.name+"/drop", func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.WarnLevel)

			table, err := Read(strings.NewReader(sampleCSV+tt.row), WithPolicy(PolicyDrop), WithLogger(logger))

			require.NoError(t, err)
			assert.Equal(t, 4, table.Len())
			assert.Equal(t, 1, table.Dropped())
			require.Len(t, hook.Entries, 1)
			assert.Contains(t, hook.LastEntry().Message, "line 6")
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged_df.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := Load(path)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), path)
}

func TestLoadErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+"X,c,x,never,,cat,s,1,credit_card,5,p,1\n"), 0o644))

	_, err := Load(path)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
	assert.Contains(t, err.Error(), "line 6")
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MalformedPolicy
		wantErr bool
	}{
		{"", PolicyFail, false},
		{"fail", PolicyFail, false},
		{"DROP", PolicyDrop, false},
		{" drop ", PolicyDrop, false},
		{"coerce", PolicyFail, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
