package aggregation

import (
	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
)

// grouped holds per-key accumulators in first-encounter order, so a stable
// sort over it keeps ties in the order the keys were first seen.
type grouped[A any] struct {
	keys []string
	accs map[string]*A
}

// groupBy folds every row of t into the accumulator of its key.
func groupBy[A any](t *dataset.Table, key func(models.OrderLine) string, add func(*A, models.OrderLine)) grouped[A] {
	g := grouped[A]{accs: make(map[string]*A)}
	t.Each(func(l models.OrderLine) {
		k := key(l)
		acc, ok := g.accs[k]
		if !ok {
			acc = new(A)
			g.accs[k] = acc
			g.keys = append(g.keys, k)
		}
		add(acc, l)
	})
	return g
}

// distinct counts unique values.
type distinct map[string]struct{}

func (d *distinct) add(v string) {
	if *d == nil {
		*d = make(distinct)
	}
	(*d)[v] = struct{}{}
}

func (d distinct) len() int {
	return len(d)
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
