package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"trends-viewer/internal/models"
)

// ViewButtons is the control panel: the selected topic and one button per view.
type ViewButtons struct {
	container  *fyne.Container
	topicLabel *widget.Label
	buttons    map[models.ViewSelection]*widget.Button

	// Event handlers
	selectHandler func(models.ViewSelection)

	// State
	busy bool
}

// NewViewButtons creates the control panel for topic
func NewViewButtons(topic string) *ViewButtons {
	vb := &ViewButtons{buttons: make(map[models.ViewSelection]*widget.Button)}
	vb.createComponents(topic)
	vb.buildLayout()
	return vb
}

// createComponents initializes the label and buttons
func (vb *ViewButtons) createComponents(topic string) {
	vb.topicLabel = widget.NewLabel(fmt.Sprintf("Selected topic: %s", topic))

	for _, view := range models.AllViews {
		view := view
		button := widget.NewButton(view.String(), func() {
			if vb.selectHandler != nil && !vb.busy {
				vb.selectHandler(view)
			}
		})
		button.Importance = widget.HighImportance
		vb.buttons[view] = button
	}
}

// buildLayout stacks the label above the buttons in view order
func (vb *ViewButtons) buildLayout() {
	objects := []fyne.CanvasObject{vb.topicLabel}
	for _, view := range models.AllViews {
		objects = append(objects, vb.buttons[view])
	}
	vb.container = container.NewVBox(objects...)
}

// SetSelectHandler sets the handler called with the chosen view
func (vb *ViewButtons) SetSelectHandler(handler func(models.ViewSelection)) {
	vb.selectHandler = handler
}

// SetBusy disables every button while a dispatch is running
func (vb *ViewButtons) SetBusy(busy bool) {
	vb.busy = busy
	for _, button := range vb.buttons {
		if busy {
			button.Disable()
		} else {
			button.Enable()
		}
	}
}

// IsBusy reports whether the buttons are disabled
func (vb *ViewButtons) IsBusy() bool {
	return vb.busy
}

// Button returns the button for view, used by tests
func (vb *ViewButtons) Button(view models.ViewSelection) *widget.Button {
	return vb.buttons[view]
}

// GetContainer returns the control panel container
func (vb *ViewButtons) GetContainer() *fyne.Container {
	return vb.container
}
