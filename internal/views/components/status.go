package components

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays application status and information
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	resultInfo  *widget.Label
	memoryInfo  *widget.Label
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

// createComponents initializes status bar components
func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.resultInfo = widget.NewLabel("No data loaded")
	sb.memoryInfo = widget.NewLabel("Memory: --")
}

// buildLayout constructs the status bar layout
func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.resultInfo,
		widget.NewSeparator(),
		sb.memoryInfo,
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetResultInfo summarises the last dispatch
func (sb *StatusBar) SetResultInfo(rows, columns int, elapsed time.Duration) {
	sb.resultInfo.SetText(fmt.Sprintf("Rows: %d, columns: %d, fetched in %s", rows, columns, elapsed.Round(time.Millisecond)))
}

// GetResultInfo returns the result summary text
func (sb *StatusBar) GetResultInfo() string {
	return sb.resultInfo.Text
}

// SetMemoryInfo updates the memory usage display
func (sb *StatusBar) SetMemoryInfo(allocated uint64) {
	sb.memoryInfo.SetText(fmt.Sprintf("Memory: %d MB", allocated/(1024*1024)))
}

// Reset resets the status bar to initial state
func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText("Ready")
	sb.resultInfo.SetText("No data loaded")
	sb.memoryInfo.SetText("Memory: --")
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

// ActivityIndicator shows an indeterminate bar while the provider is queried
type ActivityIndicator struct {
	container *fyne.Container
	bar       *widget.ProgressBarInfinite
	stage     *widget.Label
	visible   bool
}

// NewActivityIndicator creates a hidden activity indicator
func NewActivityIndicator() *ActivityIndicator {
	ai := &ActivityIndicator{}
	ai.bar = widget.NewProgressBarInfinite()
	ai.bar.Stop()
	ai.stage = widget.NewLabel("Ready")
	ai.container = container.NewVBox(ai.stage, ai.bar)
	ai.container.Hide()
	return ai
}

// Start shows the indicator with a stage message
func (ai *ActivityIndicator) Start(stage string) {
	ai.stage.SetText(stage)
	ai.bar.Start()
	ai.container.Show()
	ai.visible = true
}

// Stop hides the indicator
func (ai *ActivityIndicator) Stop() {
	ai.bar.Stop()
	ai.container.Hide()
	ai.visible = false
}

// IsVisible returns true while the indicator is running
func (ai *ActivityIndicator) IsVisible() bool {
	return ai.visible
}

// GetStage returns the current stage text
func (ai *ActivityIndicator) GetStage() string {
	return ai.stage.Text
}

// GetContainer returns the indicator container
func (ai *ActivityIndicator) GetContainer() *fyne.Container {
	return ai.container
}
