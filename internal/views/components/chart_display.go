package components

import (
	"image"
	"image/color"
	"image/draw"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const (
	ChartAreaWidth  = 720
	ChartAreaHeight = 720
)

// ChartDisplay is the single drawing surface every view renders into.
// The same canvas.Image is reused and overwritten on each render.
type ChartDisplay struct {
	container   *fyne.Container
	chart       *canvas.Image
	placeholder image.Image
	current     image.Image
}

// NewChartDisplay creates the chart surface with a blank placeholder
func NewChartDisplay() *ChartDisplay {
	display := &ChartDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

// createComponents initializes the placeholder and canvas image
func (cd *ChartDisplay) createComponents() {
	cd.placeholder = placeholderImage(ChartAreaWidth, ChartAreaHeight)

	cd.chart = canvas.NewImageFromImage(cd.placeholder)
	cd.chart.FillMode = canvas.ImageFillContain
	cd.chart.ScaleMode = canvas.ImageScaleSmooth
	cd.chart.SetMinSize(fyne.NewSize(ChartAreaWidth/2, ChartAreaHeight/2))
}

// placeholderImage is a light gray rectangle with a darker border
func placeholderImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	draw.Draw(img, img.Bounds(), image.NewUniform(border), image.Point{}, draw.Src)

	inner := image.Rect(1, 1, width-1, height-1)
	draw.Draw(img, inner, image.NewUniform(color.RGBA{R: 240, G: 240, B: 240, A: 255}), image.Point{}, draw.Src)
	return img
}

// setupLayout puts the chart over a white background
func (cd *ChartDisplay) setupLayout() {
	bg := canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255})
	cd.container = container.NewStack(bg, cd.chart)
}

// SetChart replaces the drawn chart; nil restores the placeholder
func (cd *ChartDisplay) SetChart(img image.Image) {
	cd.current = img
	if img != nil {
		cd.chart.Image = img
	} else {
		cd.chart.Image = cd.placeholder
	}
	cd.chart.Refresh()
}

// CurrentChart returns the chart on screen, or nil when showing the placeholder
func (cd *ChartDisplay) CurrentChart() image.Image {
	return cd.current
}

// HasChart returns true if a chart has been drawn
func (cd *ChartDisplay) HasChart() bool {
	return cd.current != nil
}

// Clear restores the placeholder
func (cd *ChartDisplay) Clear() {
	cd.SetChart(nil)
}

// GetContainer returns the chart container
func (cd *ChartDisplay) GetContainer() *fyne.Container {
	return cd.container
}
