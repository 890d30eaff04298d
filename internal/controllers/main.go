package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trends-viewer/internal/logger"
	"trends-viewer/internal/models"
	"trends-viewer/internal/render"
	"trends-viewer/internal/services"
	"trends-viewer/internal/views"

	"fyne.io/fyne/v2"
)

// ErrNoChart is returned by SaveChart before any chart was drawn.
var ErrNoChart = errors.New("no chart to save")

// ViewDispatcher runs one view selection end to end.
type ViewDispatcher interface {
	Dispatch(ctx context.Context, view models.ViewSelection) (*services.ViewResult, error)
}

// MainController connects the view buttons to the dispatcher
type MainController struct {
	dispatcher ViewDispatcher
	log        logger.Logger

	// Views
	mainView *views.MainView

	// State management
	mu         sync.Mutex
	baseCtx    context.Context
	cancel     context.CancelFunc
	busy       bool
	lastResult *services.ViewResult
}

// NewMainController creates a new main controller. Dispatches derive from ctx.
func NewMainController(ctx context.Context, dispatcher ViewDispatcher, log logger.Logger) *MainController {
	if log == nil {
		log = logger.Nop()
	}
	return &MainController{
		dispatcher: dispatcher,
		log:        log,
		baseCtx:    ctx,
	}
}

// SetMainView associates the main view with this controller
func (mc *MainController) SetMainView(view *views.MainView) {
	mc.mainView = view
	view.SetDispatchHandler(mc.Dispatch)
	view.SetSaveHandler(mc.SaveChart)
}

// Dispatch starts a background dispatch for view. A call while another
// dispatch is running is ignored.
func (mc *MainController) Dispatch(view models.ViewSelection) {
	mc.mu.Lock()
	if mc.busy {
		mc.mu.Unlock()
		mc.log.Debug("dispatch ignored while busy", map[string]interface{}{"view": view.Key()})
		return
	}
	ctx, cancel := context.WithCancel(mc.baseCtx)
	mc.busy = true
	mc.cancel = cancel
	mc.mu.Unlock()

	if mc.mainView != nil {
		mc.mainView.SetBusy(true, fmt.Sprintf("Fetching %s...", view))
		mc.mainView.UpdateStatus(fmt.Sprintf("Fetching %s", view))
	}

	go mc.performDispatch(ctx, cancel, view)
}

// performDispatch handles the dispatch in background
func (mc *MainController) performDispatch(ctx context.Context, cancel context.CancelFunc, view models.ViewSelection) {
	defer cancel()

	result, err := mc.dispatcher.Dispatch(ctx, view)

	mc.mu.Lock()
	mc.busy = false
	mc.cancel = nil
	if err == nil {
		mc.lastResult = result
	}
	mc.mu.Unlock()

	if mc.mainView == nil {
		return
	}
	mc.mainView.SetBusy(false, "")

	if err != nil {
		if ctx.Err() != nil {
			mc.mainView.UpdateStatus("Cancelled")
			return
		}
		mc.handleError(fmt.Sprintf("%s failed", view), err)
		return
	}

	mc.mainView.ShowChart(view.String(), result.Image)
	mc.mainView.SetResultInfo(result.Table.Len(), len(result.Table.ColumnNames()), result.Elapsed.Round(time.Millisecond))
	status := fmt.Sprintf("Showing %s", view)
	if result.ExportPath != "" {
		status = fmt.Sprintf("%s, saved %s", status, result.ExportPath)
	}
	mc.mainView.UpdateStatus(status)
}

// SaveChart asks for a destination and writes the current chart as PNG
func (mc *MainController) SaveChart() {
	mc.mu.Lock()
	result := mc.lastResult
	mc.mu.Unlock()

	if result == nil || result.Image == nil {
		mc.handleError("Save failed", ErrNoChart)
		return
	}
	if mc.mainView == nil {
		return
	}

	mc.mainView.ShowSaveDialog(result.View.Key()+".png", func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mc.handleError("File save error", err)
			return
		}
		if writer == nil {
			return
		}
		go mc.saveChartToWriter(writer, result)
	})
}

// saveChartToWriter encodes the chart into writer and closes it
func (mc *MainController) saveChartToWriter(writer fyne.URIWriteCloser, result *services.ViewResult) {
	err := render.EncodePNG(writer, result.Image)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		mc.handleError("Chart save failed", err)
		return
	}

	mc.log.Info("chart saved", map[string]interface{}{
		"view": result.View.Key(),
		"path": writer.URI().String(),
	})
	if mc.mainView != nil {
		mc.mainView.UpdateStatus(fmt.Sprintf("Saved %s", writer.URI().Name()))
		mc.mainView.ShowInfo("Chart saved", writer.URI().Path())
	}
}

// IsBusy reports whether a dispatch is in flight
func (mc *MainController) IsBusy() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.busy
}

// LastResult returns the most recent successful dispatch, or nil
func (mc *MainController) LastResult() *services.ViewResult {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lastResult
}

// CancelDispatch cancels the in-flight dispatch, if any
func (mc *MainController) CancelDispatch() {
	mc.mu.Lock()
	if mc.cancel != nil {
		mc.cancel()
	}
	mc.mu.Unlock()
}

// handleError logs err and shows it in an error dialog
func (mc *MainController) handleError(title string, err error) {
	mc.log.Error(title, err, nil)
	if mc.mainView != nil {
		mc.mainView.ShowError(title, err)
	}
}

// Shutdown performs cleanup when the application closes
func (mc *MainController) Shutdown() {
	mc.CancelDispatch()
}
