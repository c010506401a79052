package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/ecomdash/internal/aggregation"
	"github.com/navid-fn/ecomdash/internal/chart"
	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/display"
	"github.com/navid-fn/ecomdash/internal/models"
	"github.com/navid-fn/ecomdash/internal/service"
)

// DashboardResponse is a dashboard with its display values.
type DashboardResponse struct {
	Selection dataset.Selection `json:"selection"`
	*aggregation.Dashboard
	Metrics         display.Metrics          `json:"metrics"`
	BestCategories  []models.CategorySales   `json:"best_categories"`
	WorstCategories []models.CategorySales   `json:"worst_categories"`
	TopCustomers    aggregation.TopCustomers `json:"top_customers"`
}

func newDashboardResponse(sel dataset.Selection, d *aggregation.Dashboard) DashboardResponse {
	return DashboardResponse{
		Selection:       sel,
		Dashboard:       d,
		Metrics:         display.SummaryMetrics(d.Summary),
		BestCategories:  d.BestCategories(),
		WorstCategories: d.WorstCategories(),
		TopCustomers:    d.TopCustomers(),
	}
}

// TableResponse is one derived table.
type TableResponse struct {
	Selection dataset.Selection `json:"selection"`
	Table     string            `json:"table"`
	Rows      any               `json:"rows"`
}

var tables = map[string]func(*aggregation.Dashboard) any{
	"daily-orders":   func(d *aggregation.Dashboard) any { return d.DailyOrders },
	"category-sales": func(d *aggregation.Dashboard) any { return d.CategorySales },
	"top-cities":     func(d *aggregation.Dashboard) any { return d.TopCities },
	"payment-types":  func(d *aggregation.Dashboard) any { return d.PaymentTypes },
	"top-sellers":    func(d *aggregation.Dashboard) any { return d.TopSellers },
	"review-scores":  func(d *aggregation.Dashboard) any { return d.ReviewScores },
	"rfm":            func(d *aggregation.Dashboard) any { return d.RFM },
}

type DashboardHandler struct {
	dashboards *service.DashboardService
	logger     *logrus.Logger
}

func NewDashboardHandler(dashboards *service.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboards: dashboards,
		logger:     logger,
	}
}

func (h *DashboardHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DashboardHandler) GetFilters(c *gin.Context) {
	opts, err := h.dashboards.FilterOptions(c.Request.Context())
	if err != nil {
		abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sel, d, err := h.snapshot(c)
	if err != nil {
		abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newDashboardResponse(sel, d))
}

func (h *DashboardHandler) GetTable(c *gin.Context) {
	name := c.Param("table")
	view, ok := tables[name]
	if !ok {
		abort(c, h.logger, fmt.Errorf("%w: %q", ErrUnknownTable, name))
		return
	}

	sel, d, err := h.snapshot(c)
	if err != nil {
		abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, TableResponse{Selection: sel, Table: name, Rows: view(d)})
}

func (h *DashboardHandler) GetChart(c *gin.Context) {
	sel, d, err := h.snapshot(c)
	if err != nil {
		abort(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, c.Param("chart"), d); err != nil {
		abort(c, h.logger, err)
		return
	}
	h.logger.Debugf("Rendered chart %s for %s (%d bytes)", c.Param("chart"), sel.Key(), buf.Len())
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// snapshot builds the dashboard for the request's query parameters.
func (h *DashboardHandler) snapshot(c *gin.Context) (dataset.Selection, *aggregation.Dashboard, error) {
	var q SelectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return dataset.Selection{}, nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	defaults, err := h.dashboards.DefaultSelection(c.Request.Context())
	if err != nil {
		return dataset.Selection{}, nil, err
	}
	sel, err := q.Selection(defaults)
	if err != nil {
		return dataset.Selection{}, nil, err
	}

	d, err := h.dashboards.Snapshot(c.Request.Context(), sel)
	if err != nil {
		return dataset.Selection{}, nil, err
	}
	return sel, d, nil
}
