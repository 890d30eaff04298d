package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ChartToolbar sits above the chart: back to the controls, save the figure.
type ChartToolbar struct {
	container  *fyne.Container
	backButton *widget.Button
	saveButton *widget.Button
	titleLabel *widget.Label

	backHandler func()
	saveHandler func()
}

func NewChartToolbar() *ChartToolbar {
	t := &ChartToolbar{}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *ChartToolbar) createComponents() {
	t.backButton = widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), func() {
		if t.backHandler != nil {
			t.backHandler()
		}
	})

	t.saveButton = widget.NewButtonWithIcon("Save PNG", theme.DocumentSaveIcon(), func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Importance = widget.HighImportance

	t.titleLabel = widget.NewLabel("")
	t.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
}

func (t *ChartToolbar) buildLayout() {
	t.container = container.NewHBox(
		t.backButton,
		widget.NewSeparator(),
		t.saveButton,
		widget.NewSeparator(),
		t.titleLabel,
	)
}

func (t *ChartToolbar) SetBackHandler(handler func()) {
	t.backHandler = handler
}

func (t *ChartToolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

func (t *ChartToolbar) SetTitle(title string) {
	t.titleLabel.SetText(title)
}

func (t *ChartToolbar) GetTitle() string {
	return t.titleLabel.Text
}

func (t *ChartToolbar) GetContainer() *fyne.Container {
	return t.container
}
