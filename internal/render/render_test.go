package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"trends-viewer/internal/models"
)

func timeTable(t *testing.T) *models.Table {
	t.Helper()
	tbl, err := models.NewTable("date", []string{"2015-01-04", "2015-01-11", "2015-01-18"},
		models.NewNumericColumn("bitcoin", []float64{3, 4, 7}),
		models.NewTextColumn("isPartial", []string{"False", "False", "True"}),
	)
	require.NoError(t, err)
	return tbl
}

func TestLineChartUsesRendererSize(t *testing.T) {
	img, err := NewRenderer(640, 480).Render(Line, timeTable(t), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestLineChartWithoutDateIndex(t *testing.T) {
	tbl, err := models.NewTable("row", []string{"a", "b"}, models.NewNumericColumn("v", []float64{1, 2}))
	require.NoError(t, err)

	_, err = NewRenderer(320, 240).Line(tbl, "rows")
	assert.NoError(t, err)
}

func TestBarChart(t *testing.T) {
	tbl, err := models.NewTable("geoName", []string{"Nigeria", "El Salvador", "Ghana"},
		models.NewNumericColumn("bitcoin", []float64{100, 83, 41}),
	)
	require.NoError(t, err)

	img, err := NewRenderer(600, 400).Render(Bar, tbl, "bitcoin by region")
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
}

func TestPiesAreLaidOutSideBySide(t *testing.T) {
	tbl, err := models.NewTable("query", []string{"bitcoin etf", "bitcoin halving"},
		models.NewNumericColumn("value", []float64{1200, 350}),
		models.NewNumericColumn("share", []float64{3, 1}),
	)
	require.NoError(t, err)

	img, err := NewRenderer(800, 400).Render(Pie, tbl, "rising")
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestNothingToPlot(t *testing.T) {
	tbl, err := models.NewTable("query", []string{"a"}, models.NewTextColumn("link", []string{"/x"}))
	require.NoError(t, err)

	_, err = NewRenderer(100, 100).Render(Pie, tbl, "")
	assert.ErrorIs(t, err, ErrNothingToPlot)

	_, err = NewRenderer(100, 100).Render(Line, nil, "")
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestEncodePNG(t *testing.T) {
	img, err := NewRenderer(200, 200).Render(Line, timeTable(t), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func regionTable(t *testing.T, names []string, values []float64) *models.Table {
	t.Helper()
	tbl, err := models.NewTable("geoName", names, models.NewNumericColumn("bitcoin", values))
	require.NoError(t, err)
	return tbl
}

// barHeights scans img left to right and returns the pixel height of every
// contiguous run of columns painted in fill.
func barHeights(img image.Image, fill color.Color) []int {
	want := color.RGBAModel.Convert(fill).(color.RGBA)
	b := img.Bounds()

	var heights []int
	inBar := false
	for x := b.Min.X; x < b.Max.X; x++ {
		count := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if color.RGBAModel.Convert(img.At(x, y)).(color.RGBA) == want {
				count++
			}
		}
		switch {
		case count > 0 && !inBar:
			heights = append(heights, count)
			inBar = true
		case count > 0:
			if count > heights[len(heights)-1] {
				heights[len(heights)-1] = count
			}
		default:
			inBar = false
		}
	}
	return heights
}

func TestBarChartFewRegions(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		values []float64
	}{
		{"single region", []string{"Nigeria"}, []float64{100}},
		{"equal values", []string{"A", "B", "C", "D", "E"}, []float64{100, 100, 100, 100, 100}},
		{"all zero", []string{"A", "B"}, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewRenderer(600, 400).Render(Bar, regionTable(t, tt.names, tt.values), "bitcoin by region")
			require.NoError(t, err)
			assert.Equal(t, 600, img.Bounds().Dx())
		})
	}
}

func TestBarChartStartsAtZero(t *testing.T) {
	img, err := NewRenderer(600, 400).Bar(regionTable(t, []string{"A", "B"}, []float64{100, 50}), "")
	require.NoError(t, err)

	heights := barHeights(img, chart.GetDefaultColor(0))
	require.Len(t, heights, 2)
	require.Greater(t, heights[0], 0)

	ratio := float64(heights[1]) / float64(heights[0])
	assert.InDelta(t, 0.5, ratio, 0.1)
}

func TestLineChartSinglePeriod(t *testing.T) {
	dated, err := models.NewTable("date", []string{"2022-09-04"},
		models.NewNumericColumn("bitcoin", []float64{42}),
		models.NewTextColumn("isPartial", []string{"True"}),
	)
	require.NoError(t, err)

	_, err = NewRenderer(320, 240).Line(dated, "bitcoin")
	assert.NoError(t, err)

	plain, err := models.NewTable("row", []string{"a"}, models.NewNumericColumn("v", []float64{1}))
	require.NoError(t, err)

	_, err = NewRenderer(320, 240).Line(plain, "rows")
	assert.NoError(t, err)
}

func TestLineChartFlatSeries(t *testing.T) {
	tbl, err := models.NewTable("date", []string{"2022-09-04", "2022-09-11"},
		models.NewNumericColumn("bitcoin", []float64{0, 0}),
	)
	require.NoError(t, err)

	_, err = NewRenderer(320, 240).Line(tbl, "bitcoin")
	assert.NoError(t, err)
}
