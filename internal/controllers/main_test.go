package controllers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-viewer/internal/logger"
	"trends-viewer/internal/models"
	"trends-viewer/internal/render"
	"trends-viewer/internal/services"
	"trends-viewer/internal/views"
)

type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []models.ViewSelection
	release chan struct{}
	err     error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, view models.ViewSelection) (*services.ViewResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, view)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	table, err := models.NewTable("geoName", []string{"A", "B"},
		models.NewNumericColumn("bitcoin", []float64{3, 1}))
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.Black)
	return &services.ViewResult{
		ID:      "id",
		View:    view,
		Kind:    render.Bar,
		Table:   table,
		Image:   img,
		Elapsed: time.Millisecond,
	}, nil
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newController(t *testing.T, dispatcher ViewDispatcher) (*MainController, *views.MainView) {
	t.Helper()
	app := test.NewTempApp(t)
	window := app.NewWindow("Google Trends Data")
	view := views.NewMainView(window, models.DefaultTopic)

	controller := NewMainController(context.Background(), dispatcher, logger.Nop())
	controller.SetMainView(view)
	return controller, view
}

func TestDispatchShowsChart(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	controller, view := newController(t, dispatcher)

	controller.Dispatch(models.InterestByRegion)

	require.Eventually(t, func() bool {
		return view.GetViewState().ShowingChart
	}, time.Second, 5*time.Millisecond)

	state := view.GetViewState()
	assert.True(t, state.HasChart)
	assert.False(t, state.Busy)
	assert.Equal(t, "Interest by region", state.ChartTitle)
	assert.Contains(t, state.ResultInfo, "Rows: 2")
	assert.NotNil(t, view.CurrentChart())

	require.NotNil(t, controller.LastResult())
	assert.Equal(t, models.InterestByRegion, controller.LastResult().View)
}

func TestDispatchIgnoredWhileBusy(t *testing.T) {
	dispatcher := &fakeDispatcher{release: make(chan struct{})}
	controller, _ := newController(t, dispatcher)

	controller.Dispatch(models.InterestOverTime)
	require.Eventually(t, func() bool { return dispatcher.callCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, controller.IsBusy())

	controller.Dispatch(models.RelatedTopics)
	close(dispatcher.release)

	require.Eventually(t, func() bool { return !controller.IsBusy() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, dispatcher.callCount())
}

func TestDispatchFailureKeepsControls(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("provider said no")}
	controller, view := newController(t, dispatcher)

	controller.Dispatch(models.RelatedQueries)

	require.Eventually(t, func() bool { return !controller.IsBusy() }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return view.GetViewState().StatusMessage == "Related Queries failed"
	}, time.Second, 5*time.Millisecond)

	state := view.GetViewState()
	assert.False(t, state.ShowingChart)
	assert.Nil(t, controller.LastResult())
}

func TestShutdownCancelsDispatch(t *testing.T) {
	dispatcher := &fakeDispatcher{release: make(chan struct{})}
	controller, view := newController(t, dispatcher)

	controller.Dispatch(models.InterestOverTime)
	require.Eventually(t, func() bool { return dispatcher.callCount() == 1 }, time.Second, 5*time.Millisecond)

	controller.Shutdown()

	require.Eventually(t, func() bool { return !controller.IsBusy() }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return view.GetViewState().StatusMessage == "Cancelled"
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, controller.LastResult())
}

type memoryWriter struct {
	bytes.Buffer
	uri    fyne.URI
	closed bool
}

func (w *memoryWriter) Close() error {
	w.closed = true
	return nil
}

func (w *memoryWriter) URI() fyne.URI {
	return w.uri
}

func TestSaveChartWritesPNG(t *testing.T) {
	controller, view := newController(t, &fakeDispatcher{})

	controller.Dispatch(models.InterestByRegion)
	require.Eventually(t, func() bool { return controller.LastResult() != nil }, time.Second, 5*time.Millisecond)

	writer := &memoryWriter{uri: storage.NewFileURI("/tmp/interest_by_region.png")}
	controller.saveChartToWriter(writer, controller.LastResult())

	assert.True(t, writer.closed)
	decoded, err := png.Decode(&writer.Buffer)
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
	assert.Equal(t, "Saved interest_by_region.png", view.GetViewState().StatusMessage)
}

func TestSaveChartWithoutChart(t *testing.T) {
	controller, view := newController(t, &fakeDispatcher{})

	controller.SaveChart()

	assert.Equal(t, "Save failed", view.GetViewState().StatusMessage)
}
