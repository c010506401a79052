// Package chart renders dashboard views as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/navid-fn/ecomdash/internal/aggregation"
	"github.com/navid-fn/ecomdash/internal/models"
)

const (
	Width  = 1600
	Height = 800
)

var (
	// ErrUnknownChart is returned for a chart name Render does not know.
	ErrUnknownChart = errors.New("unknown chart")

	// ErrNoData is returned when the view to draw has no rows.
	ErrNoData = errors.New("no data to chart")

	highlight = drawing.ColorFromHex("90CAF9")
	muted     = drawing.ColorFromHex("D3D3D3")

	pieColors = []drawing.Color{
		drawing.ColorFromHex("08519C"),
		drawing.ColorFromHex("3182BD"),
		drawing.ColorFromHex("6BAED6"),
		drawing.ColorFromHex("9ECAE1"),
		drawing.ColorFromHex("C6DBEF"),
		drawing.ColorFromHex("DEEBF7"),
	}
)

// Names lists every chart Render can draw.
var Names = []string{
	"daily-orders",
	"best-categories",
	"worst-categories",
	"top-cities",
	"top-sellers",
	"payment-types",
	"review-scores",
}

// Render draws the named chart of d as PNG into w.
func Render(w io.Writer, name string, d *aggregation.Dashboard) error {
	switch name {
	case "daily-orders":
		return DailyOrders(w, d.DailyOrders)
	case "best-categories":
		return Bars(w, "Best Performing Product", categoryBars(d.BestCategories()))
	case "worst-categories":
		return Bars(w, "Worst Performing Product", categoryBars(d.WorstCategories()))
	case "top-cities":
		bars := make([]Bar, 0, len(d.TopCities))
		for _, c := range d.TopCities {
			bars = append(bars, Bar{Label: c.City, Value: float64(c.CustomerCount)})
		}
		return Bars(w, "Top 10 Number of Customer by City", bars)
	case "top-sellers":
		bars := make([]Bar, 0, len(d.TopSellers))
		for _, s := range d.TopSellers {
			v, _ := s.Sales.Float64()
			bars = append(bars, Bar{Label: s.SellerID, Value: v})
		}
		return Bars(w, "Top 10 Seller by Total Sales", bars)
	case "payment-types":
		slices := make([]Bar, 0, len(d.PaymentTypes))
		for _, p := range d.PaymentTypes {
			slices = append(slices, Bar{Label: p.PaymentType, Value: float64(p.OrderCount)})
		}
		return Pie(w, "Trend of Payment Type", slices)
	case "review-scores":
		slices := make([]Bar, 0, len(d.ReviewScores))
		for _, r := range d.ReviewScores {
			slices = append(slices, Bar{Label: r.ReviewScore, Value: float64(r.ReviewCount)})
		}
		return Pie(w, "Distribution of Review Score", slices)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

func categoryBars(rows []models.CategorySales) []Bar {
	bars := make([]Bar, 0, len(rows))
	for _, c := range rows {
		v, _ := c.Cnt.Float64()
		bars = append(bars, Bar{Label: c.Category, Value: v})
	}
	return bars
}

// DailyOrders draws the order count per day as a line.
func DailyOrders(w io.Writer, rows []models.DailyOrders) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	xs := make([]time.Time, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r.Date.Time
		ys[i] = float64(r.OrderCount)
	}

	// explicit ranges keep single-day and flat series drawable
	graph := gochart.Chart{
		Title:  "Daily Orders",
		Width:  Width,
		Height: Height,
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeDateValueFormatter,
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(xs[0].Add(-12 * time.Hour)),
				Max: gochart.TimeToFloat64(xs[len(xs)-1].Add(12 * time.Hour)),
			},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: upper(ys)},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Orders",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: highlight,
					StrokeWidth: 2,
					DotColor:    highlight,
					DotWidth:    4,
				},
			},
		},
	}
	return graph.Render(gochart.PNG, w)
}

// Bar is one labelled value of a bar or pie chart.
type Bar struct {
	Label string
	Value float64
}

// Bars draws a bar chart with the first bar highlighted.
func Bars(w io.Writer, title string, bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoData
	}

	values := make([]gochart.Value, len(bars))
	ys := make([]float64, len(bars))
	for i, b := range bars {
		color := muted
		if i == 0 {
			color = highlight
		}
		values[i] = gochart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: gochart.Style{FillColor: color, StrokeColor: color},
		}
		ys[i] = b.Value
	}

	graph := gochart.BarChart{
		Title:    title,
		Width:    Width,
		Height:   Height,
		BarWidth: 60,
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: upper(ys)},
		},
		Bars: values,
	}
	return graph.Render(gochart.PNG, w)
}

// Pie draws a pie chart of the slices' shares.
func Pie(w io.Writer, title string, slices []Bar) error {
	var total float64
	for _, s := range slices {
		total += s.Value
	}
	if len(slices) == 0 || total <= 0 {
		return ErrNoData
	}

	values := make([]gochart.Value, len(slices))
	for i, s := range slices {
		color := pieColors[i%len(pieColors)]
		values[i] = gochart.Value{
			Label: fmt.Sprintf("%s (%.2f%%)", s.Label, s.Value/total*100),
			Value: s.Value,
			Style: gochart.Style{FillColor: color},
		}
	}

	graph := gochart.PieChart{
		Title:  title,
		Width:  Height,
		Height: Height,
		Values: values,
	}
	return graph.Render(gochart.PNG, w)
}

// upper returns a y-axis maximum with headroom, never zero.
func upper(ys []float64) float64 {
	var m float64
	for _, y := range ys {
		if y > m {
			m = y
		}
	}
	if m == 0 {
		return 1
	}
	return m * 1.1
}
