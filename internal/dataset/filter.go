package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/navid-fn/ecomdash/internal/models"
)

// All is the selector value meaning no restriction on a dimension.
const All = "All"

// Selection is one dashboard filter choice. Start and End are inclusive
// calendar dates; time of day is ignored.
type Selection struct {
	Start    models.Date `json:"start"`
	End      models.Date `json:"end"`
	City     string      `json:"city"`
	Category string      `json:"category"`
}

// ErrInvalidRange is returned by Selection.Validate when End precedes Start.
var ErrInvalidRange = errors.New("end date is before start date")

// NewSelection builds a Selection, truncating start and end to dates.
func NewSelection(start, end time.Time, city, category string) Selection {
	return Selection{
		Start:    models.DateOf(start),
		End:      models.DateOf(end),
		City:     city,
		Category: category,
	}
}

// DefaultSelection spans the whole table with no city or category filter.
func DefaultSelection(t *Table) Selection {
	sel := Selection{City: All, Category: All}
	if minDate, ok := t.MinDate(); ok {
		sel.Start = minDate
	}
	if maxDate, ok := t.MaxDate(); ok {
		sel.End = maxDate
	}
	return sel
}

// Validate rejects reversed date ranges.
func (s Selection) Validate() error {
	if s.End.Before(s.Start.Time) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.Start, s.End)
	}
	return nil
}

// Key identifies the selection, for caching per selection.
func (s Selection) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", s.Start, s.End, normalize(s.City), normalize(s.Category))
}

// Match reports whether line satisfies every active predicate.
func (s Selection) Match(line models.OrderLine) bool {
	day := models.DateOf(line.OrderPurchaseTimestamp)
	if day.Before(s.Start.Time) || day.After(s.End.Time) {
		return false
	}
	if city := normalize(s.City); city != All && line.CustomerCity != city {
		return false
	}
	if category := normalize(s.Category); category != All && line.ProductCategoryEnglish != category {
		return false
	}
	return true
}

func normalize(v string) string {
	if v == "" {
		return All
	}
	return v
}

// Filter returns the rows of t matching sel, in their original order.
// An empty result is a valid Table.
func Filter(t *Table, sel Selection) *Table {
	out := &Table{rows: []models.OrderLine{}}
	t.Each(func(l models.OrderLine) {
		if sel.Match(l) {
			out.rows = append(out.rows, l)
		}
	})
	return out
}

// Options lists the values a user can pick from for each selector.
type Options struct {
	MinDate    models.Date `json:"min_date"`
	MaxDate    models.Date `json:"max_date"`
	Cities     []string    `json:"cities"`
	Categories []string    `json:"categories"`
}

// FilterOptions returns the selector values of t, each list led by All.
func FilterOptions(t *Table) Options {
	opts := Options{
		Cities:     append([]string{All}, t.Cities()...),
		Categories: append([]string{All}, t.Categories()...),
	}
	opts.MinDate, _ = t.MinDate()
	opts.MaxDate, _ = t.MaxDate()
	return opts
}
