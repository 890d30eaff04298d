package views

import (
	"image"
	"time"

	"trends-viewer/internal/models"
	"trends-viewer/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

// MainView owns the window content. The central widget is either the control
// panel or the chart panel; the activity and status area stays below both.
type MainView struct {
	// UI Components
	window       fyne.Window
	controls     *components.ViewButtons
	toolbar      *components.ChartToolbar
	chartDisplay *components.ChartDisplay
	statusBar    *components.StatusBar
	activity     *components.ActivityIndicator

	content       *fyne.Container
	controlsPanel fyne.CanvasObject
	chartPanel    fyne.CanvasObject
	showingChart  bool

	// Event handlers - connected to controller
	dispatchHandler func(models.ViewSelection)
	saveHandler     func()
}

// NewMainView creates a new main view for topic
func NewMainView(window fyne.Window, topic string) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents(topic)
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

// initializeComponents creates all UI components
func (mv *MainView) initializeComponents(topic string) {
	mv.controls = components.NewViewButtons(topic)
	mv.toolbar = components.NewChartToolbar()
	mv.chartDisplay = components.NewChartDisplay()
	mv.statusBar = components.NewStatusBar()
	mv.activity = components.NewActivityIndicator()
}

// buildLayout constructs both panels and starts on the controls
func (mv *MainView) buildLayout() {
	mv.controlsPanel = mv.controls.GetContainer()
	mv.chartPanel = container.NewBorder(
		mv.toolbar.GetContainer(),
		nil,
		nil,
		nil,
		mv.chartDisplay.GetContainer(),
	)

	mv.content = container.NewStack(mv.controlsPanel)

	root := container.NewBorder(
		nil,
		container.NewVBox(mv.activity.GetContainer(), mv.statusBar.GetContainer()),
		nil,
		nil,
		mv.content,
	)

	mv.window.SetContent(root)
}

// setupEventHandlers connects internal component events
func (mv *MainView) setupEventHandlers() {
	mv.controls.SetSelectHandler(func(view models.ViewSelection) {
		if mv.dispatchHandler != nil {
			mv.dispatchHandler(view)
		}
	})

	mv.toolbar.SetBackHandler(mv.ShowControls)

	mv.toolbar.SetSaveHandler(func() {
		if mv.saveHandler != nil {
			mv.saveHandler()
		}
	})
}

// SetDispatchHandler sets the handler for view button presses
func (mv *MainView) SetDispatchHandler(handler func(models.ViewSelection)) {
	mv.dispatchHandler = handler
}

// SetSaveHandler sets the handler for the Save PNG action
func (mv *MainView) SetSaveHandler(handler func()) {
	mv.saveHandler = handler
}

// UI update methods - called by controller

// ShowChart draws img on the shared surface and swaps the chart panel in
func (mv *MainView) ShowChart(title string, img image.Image) {
	fyne.Do(func() {
		mv.toolbar.SetTitle(title)
		mv.chartDisplay.SetChart(img)
		mv.setContent(mv.chartPanel, true)
	})
}

// ShowControls swaps the control panel back in
func (mv *MainView) ShowControls() {
	fyne.Do(func() {
		mv.setContent(mv.controlsPanel, false)
	})
}

// setContent replaces the central widget, keeping the status area in place
func (mv *MainView) setContent(panel fyne.CanvasObject, chart bool) {
	mv.showingChart = chart
	mv.content.Objects = []fyne.CanvasObject{panel}
	mv.content.Refresh()
}

// SetBusy disables the view buttons and shows the activity indicator
func (mv *MainView) SetBusy(busy bool, stage string) {
	fyne.Do(func() {
		mv.controls.SetBusy(busy)
		if busy {
			mv.activity.Start(stage)
		} else {
			mv.activity.Stop()
		}
	})
}

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// SetResultInfo summarises the last dispatch in the status bar
func (mv *MainView) SetResultInfo(rows, columns int, elapsed time.Duration) {
	fyne.Do(func() {
		mv.statusBar.SetResultInfo(rows, columns, elapsed)
	})
}

// SetMemoryInfo updates memory usage information
func (mv *MainView) SetMemoryInfo(allocated uint64) {
	fyne.Do(func() {
		mv.statusBar.SetMemoryInfo(allocated)
	})
}

// CurrentChart returns the chart on screen, nil before the first dispatch
func (mv *MainView) CurrentChart() image.Image {
	return mv.chartDisplay.CurrentChart()
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(title)
		dialog.ShowError(err, mv.window)
	})
}

// ShowInfo displays an information dialog
func (mv *MainView) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

// ShowConfirm displays a confirmation dialog
func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, callback, mv.window)
	})
}

// ShowSaveDialog displays a file save dialog
func (mv *MainView) ShowSaveDialog(fileName string, callback func(fyne.URIWriteCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(callback, mv.window)
		d.SetFileName(fileName)
		d.Show()
	})
}

// Show displays the view
func (mv *MainView) Show() {
	fyne.Do(func() {
		mv.window.Show()
	})
}

// ViewState represents the current state of the view
type ViewState struct {
	ShowingChart  bool
	HasChart      bool
	Busy          bool
	ChartTitle    string
	StatusMessage string
	ResultInfo    string
}

// GetViewState returns the current view state
func (mv *MainView) GetViewState() ViewState {
	return ViewState{
		ShowingChart:  mv.showingChart,
		HasChart:      mv.chartDisplay.HasChart(),
		Busy:          mv.controls.IsBusy(),
		ChartTitle:    mv.toolbar.GetTitle(),
		StatusMessage: mv.statusBar.GetStatus(),
		ResultInfo:    mv.statusBar.GetResultInfo(),
	}
}
