package dataset

import (
	"sort"

	"github.com/navid-fn/ecomdash/internal/models"
)

// Table is an immutable, purchase-time ordered sequence of order lines.
// Filter returns a new Table; nothing mutates one after construction.
type Table struct {
	rows    []models.OrderLine
	dropped int
}

// NewTable copies lines and stably sorts them ascending by purchase time.
func NewTable(lines []models.OrderLine) *Table {
	rows := make([]models.OrderLine, len(lines))
	copy(rows, lines)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OrderPurchaseTimestamp.Before(rows[j].OrderPurchaseTimestamp)
	})
	return &Table{rows: rows}
}

// Len returns the number of rows. A nil Table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// At returns row i.
func (t *Table) At(i int) models.OrderLine {
	return t.rows[i]
}

// Rows returns a copy of every row.
func (t *Table) Rows() []models.OrderLine {
	if t == nil {
		return []models.OrderLine{}
	}
	out := make([]models.OrderLine, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn for every row in order.
func (t *Table) Each(fn func(models.OrderLine)) {
	if t == nil {
		return
	}
	for i := range t.rows {
		fn(t.rows[i])
	}
}

// Dropped returns how many malformed rows were skipped while loading.
func (t *Table) Dropped() int {
	if t == nil {
		return 0
	}
	return t.dropped
}

// MinDate returns the earliest purchase date. ok is false for an empty table.
func (t *Table) MinDate() (d models.Date, ok bool) {
	if t.Len() == 0 {
		return models.Date{}, false
	}
	return models.DateOf(t.rows[0].OrderPurchaseTimestamp), true
}

// MaxDate returns the latest purchase date. ok is false for an empty table.
func (t *Table) MaxDate() (d models.Date, ok bool) {
	if t.Len() == 0 {
		return models.Date{}, false
	}
	return models.DateOf(t.rows[len(t.rows)-1].OrderPurchaseTimestamp), true
}

// Cities returns distinct customer cities in first-seen order.
func (t *Table) Cities() []string {
	return t.distinct(func(l models.OrderLine) string { return l.CustomerCity })
}

// Categories returns distinct product categories in first-seen order.
func (t *Table) Categories() []string {
	return t.distinct(func(l models.OrderLine) string { return l.ProductCategoryEnglish })
}

func (t *Table) distinct(key func(models.OrderLine) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	t.Each(func(l models.OrderLine) {
		k := key(l)
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
	})
	return out
}
