// Package render draws reshaped tables as PNG charts with go-chart and hands
// them back as images for the chart surface.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"trends-viewer/internal/models"
)

// Kind selects the chart style.
type Kind int

const (
	Line Kind = iota
	Bar
	Pie
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Bar:
		return "bar"
	case Pie:
		return "pie"
	default:
		return "unknown"
	}
}

var ErrNothingToPlot = errors.New("render: table has no numeric columns or no rows")

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05"}

// Renderer draws charts at a fixed pixel size.
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 720
	}
	if height <= 0 {
		height = 720
	}
	return &Renderer{width: width, height: height}
}

// Render draws t in the requested style.
func (r *Renderer) Render(kind Kind, t *models.Table, title string) (image.Image, error) {
	if t == nil || t.Len() == 0 || len(t.NumericColumns()) == 0 {
		return nil, ErrNothingToPlot
	}
	switch kind {
	case Line:
		return r.Line(t, title)
	case Bar:
		return r.Bar(t, title)
	case Pie:
		return r.Pies(t, title)
	default:
		return nil, fmt.Errorf("render: unknown chart kind %d", kind)
	}
}

// Line draws every numeric column as a series over the index. Date indexes
// get a time axis, anything else is plotted by row position.
func (r *Renderer) Line(t *models.Table, title string) (image.Image, error) {
	stamps, isTime := parseDates(t.Index())

	var series []chart.Series
	var all []float64
	for i, name := range t.NumericColumns() {
		values, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		all = append(all, values...)
		style := chart.Style{StrokeColor: chart.GetDefaultColor(i), StrokeWidth: 2}
		if isTime {
			series = append(series, chart.TimeSeries{Name: name, XValues: stamps, YValues: values, Style: style})
			continue
		}
		series = append(series, chart.ContinuousSeries{Name: name, XValues: positions(len(values)), YValues: values, Style: style})
	}

	xAxis := chart.XAxis{Name: t.IndexName()}
	if isTime {
		xAxis.ValueFormatter = chart.TimeDateValueFormatter
	}
	if t.Len() == 1 {
		// go-chart refuses a zero-width x range
		if isTime {
			at := float64(stamps[0].UnixNano())
			day := float64(24 * time.Hour)
			xAxis.Range = &chart.ContinuousRange{Min: at - day, Max: at + day}
		} else {
			xAxis.Range = &chart.ContinuousRange{Min: -1, Max: 1}
		}
	}

	yAxis := chart.YAxis{}
	if lo, hi := bounds(all); lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return decode(ch.Render, "line")
}

// Bar draws one bar per row of the first numeric column, labelled by the index.
func (r *Renderer) Bar(t *models.Table, title string) (image.Image, error) {
	column := t.NumericColumns()[0]
	values, err := t.Floats(column)
	if err != nil {
		return nil, err
	}

	bars := make([]chart.Value, len(values))
	for i, key := range t.Index() {
		bars[i] = chart.Value{
			Label: key,
			Value: values[i],
			Style: chart.Style{FillColor: chart.GetDefaultColor(0), StrokeColor: chart.GetDefaultColor(0)},
		}
	}

	// bars grow from zero; go-chart would otherwise start the axis at the smallest value
	_, top := bounds(values)
	if top <= 0 {
		top = 1
	}

	barWidth := r.width / (2*len(bars) + 1)
	if barWidth > 80 {
		barWidth = 80
	}

	bc := chart.BarChart{
		Title:      title + " (" + column + ")",
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top}},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}

	return decode(bc.Render, "bar")
}

// Pies draws one pie per numeric column and places them side by side.
func (r *Renderer) Pies(t *models.Table, title string) (image.Image, error) {
	columns := t.NumericColumns()
	cellWidth := r.width / len(columns)

	canvas := image.NewRGBA(image.Rect(0, 0, cellWidth*len(columns), r.height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(drawing.ColorWhite), image.Point{}, draw.Src)

	for i, column := range columns {
		values, err := t.Floats(column)
		if err != nil {
			return nil, err
		}

		slices := make([]chart.Value, 0, len(values))
		for j, key := range t.Index() {
			slices = append(slices, chart.Value{Label: key, Value: values[j]})
		}

		pc := chart.PieChart{
			Title:  pieTitle(title, column, len(columns)),
			Width:  cellWidth,
			Height: r.height,
			Values: slices,
		}
		img, err := decode(pc.Render, "pie "+column)
		if err != nil {
			return nil, err
		}

		offset := image.Pt(i*cellWidth, 0)
		draw.Draw(canvas, img.Bounds().Add(offset), img, img.Bounds().Min, draw.Over)
	}
	return canvas, nil
}

// EncodePNG writes img as PNG, used when the user saves the current chart.
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return ErrNothingToPlot
	}
	return png.Encode(w, img)
}

func decode(render func(chart.RendererProvider, io.Writer) error, what string) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", what, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s chart: %w", what, err)
	}
	return img, nil
}

func pieTitle(title, column string, columns int) string {
	if columns == 1 {
		return title
	}
	return title + " (" + column + ")"
}

func parseDates(index []string) ([]time.Time, bool) {
	stamps := make([]time.Time, len(index))
	for i, key := range index {
		parsed := false
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, key); err == nil {
				stamps[i] = ts
				parsed = true
				break
			}
		}
		if !parsed {
			return nil, false
		}
	}
	return stamps, len(index) > 0
}

// bounds returns the smallest and largest of values, both zero when empty.
func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func positions(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
