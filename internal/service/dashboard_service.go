// Package service loads the order-line dataset once and serves filtered
// dashboards over it, globally and per user session.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/navid-fn/ecomdash/internal/aggregation"
	"github.com/navid-fn/ecomdash/internal/dataset"
)

// ErrDatasetUnavailable wraps every failure to obtain the source table.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// Source produces the full, unfiltered order-line table.
type Source interface {
	Load(ctx context.Context) (*dataset.Table, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*dataset.Table, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (*dataset.Table, error) {
	return f(ctx)
}

// CSVSource reads the merged CSV file.
type CSVSource struct {
	Path    string
	Options []dataset.LoadOption
}

// Load reads the file at Path.
func (s CSVSource) Load(_ context.Context) (*dataset.Table, error) {
	return dataset.Load(s.Path, s.Options...)
}

// DashboardService memoizes the source table and builds dashboards from it.
// The table is loaded at most once; a failed load is remembered and
// returned to every caller.
type DashboardService struct {
	source Source
	logger *logrus.Logger

	once  sync.Once
	table *dataset.Table
	err   error
}

func NewDashboardService(source Source, logger *logrus.Logger) *DashboardService {
	return &DashboardService{source: source, logger: logger}
}

// Table returns the loaded source table.
func (s *DashboardService) Table(ctx context.Context) (*dataset.Table, error) {
	s.once.Do(func() {
		start := time.Now()
		// the result is shared, so one caller's cancellation must not poison it
		table, err := s.source.Load(context.WithoutCancel(ctx))
		if err != nil {
			s.err = fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
			s.logger.Errorf("Failed to load dataset: %v", err)
			return
		}
		s.table = table
		s.logger.Infof("Loaded %d order lines (%d dropped) in %s",
			table.Len(), table.Dropped(), time.Since(start).Round(time.Millisecond))
	})
	return s.table, s.err
}

// FilterOptions returns the selector values of the source table.
func (s *DashboardService) FilterOptions(ctx context.Context) (dataset.Options, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return dataset.Options{}, err
	}
	return dataset.FilterOptions(t), nil
}

// DefaultSelection spans the whole source table.
func (s *DashboardService) DefaultSelection(ctx context.Context) (dataset.Selection, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return dataset.Selection{}, err
	}
	return dataset.DefaultSelection(t), nil
}

// Snapshot filters the source table by sel and builds every view.
func (s *DashboardService) Snapshot(ctx context.Context, sel dataset.Selection) (*aggregation.Dashboard, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return aggregation.Build(dataset.Filter(t, sel)), nil
}
