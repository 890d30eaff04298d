package services

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"trends-viewer/internal/logger"
	"trends-viewer/internal/models"
	"trends-viewer/internal/render"
	"trends-viewer/internal/reshape"
	"trends-viewer/internal/trends"
)

// InterestOverTimeFile is the CSV written on every interest-over-time dispatch.
const InterestOverTimeFile = "interest_ot.csv"

// DataSource is the remote trends provider.
type DataSource interface {
	BuildPayload(ctx context.Context) error
	InterestOverTime(ctx context.Context) (*models.Table, error)
	InterestByRegion(ctx context.Context, resolution trends.Resolution, includeLowVolume, includeGeoCode bool) (*models.Table, error)
	RelatedTopics(ctx context.Context) (map[string]trends.RelatedResult, error)
	RelatedQueries(ctx context.Context) (map[string]trends.RelatedResult, error)
}

// ChartRenderer draws a reshaped table.
type ChartRenderer interface {
	Render(kind render.Kind, t *models.Table, title string) (image.Image, error)
}

// TableExporter persists a table under a file name and reports where it went.
type TableExporter interface {
	Export(name string, t *models.Table) (string, error)
}

// ViewResult is everything one dispatch produced.
type ViewResult struct {
	ID         string
	View       models.ViewSelection
	Kind       render.Kind
	Table      *models.Table
	Image      image.Image
	ExportPath string
	Elapsed    time.Duration
}

// DispatchStats summarises dispatch activity for the periodic metrics log.
type DispatchStats struct {
	Total       int
	Failed      int
	AverageTime time.Duration
	LastView    string
}

// Dispatcher maps a view selection to fetch, reshape and render.
type Dispatcher struct {
	query    models.QueryParameters
	source   DataSource
	renderer ChartRenderer
	exporter TableExporter
	log      logger.Logger

	group singleflight.Group

	payloadMu sync.Mutex
	payload   bool

	statsMu   sync.Mutex
	stats     DispatchStats
	totalTime time.Duration
}

func NewDispatcher(query models.QueryParameters, source DataSource, renderer ChartRenderer, exporter TableExporter, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		query:    query,
		source:   source,
		renderer: renderer,
		exporter: exporter,
		log:      log,
	}
}

// Query returns the parameters every dispatch uses.
func (d *Dispatcher) Query() models.QueryParameters {
	return d.query
}

// Dispatch runs one view end to end. Concurrent calls for the same view share
// a single fetch.
func (d *Dispatcher) Dispatch(ctx context.Context, view models.ViewSelection) (*ViewResult, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("dispatch: %v is not a view", view)
	}

	v, err, shared := d.group.Do(view.Key(), func() (interface{}, error) {
		return d.run(ctx, view)
	})
	if shared {
		d.log.Debug("Dispatch coalesced", map[string]interface{}{"view": view.Key()})
	}
	if err != nil {
		return nil, err
	}
	return v.(*ViewResult), nil
}

// Stats returns a snapshot of dispatch counters.
func (d *Dispatcher) Stats() DispatchStats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

func (d *Dispatcher) run(ctx context.Context, view models.ViewSelection) (*ViewResult, error) {
	result := &ViewResult{ID: uuid.NewString(), View: view, Kind: KindFor(view)}
	started := time.Now()

	d.log.Info("Dispatch started", map[string]interface{}{
		"id":    result.ID,
		"view":  view.Key(),
		"topic": d.query.PrimaryTopic(),
	})

	err := d.fill(ctx, result)
	result.Elapsed = time.Since(started)
	d.record(view, result.Elapsed, err)

	if err != nil {
		d.log.Error("Dispatch failed", err, map[string]interface{}{
			"id":         result.ID,
			"view":       view.Key(),
			"elapsed_ms": result.Elapsed.Milliseconds(),
		})
		return nil, err
	}

	d.log.Info("Dispatch completed", map[string]interface{}{
		"id":         result.ID,
		"view":       view.Key(),
		"rows":       result.Table.Len(),
		"columns":    result.Table.ColumnNames(),
		"export":     result.ExportPath,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})
	return result, nil
}

func (d *Dispatcher) fill(ctx context.Context, result *ViewResult) error {
	if err := d.ensurePayload(ctx); err != nil {
		return err
	}

	table, err := d.fetch(ctx, result.View)
	if err != nil {
		return err
	}
	result.Table = table

	if result.View == models.InterestOverTime && d.exporter != nil {
		path, err := d.exporter.Export(InterestOverTimeFile, table)
		if err != nil {
			return fmt.Errorf("export %s: %w", InterestOverTimeFile, err)
		}
		result.ExportPath = path
	}

	img, err := d.renderer.Render(result.Kind, table, d.title(result.View))
	if err != nil {
		return err
	}
	result.Image = img
	return nil
}

// fetch pulls the raw table for view and applies its reshape rule.
func (d *Dispatcher) fetch(ctx context.Context, view models.ViewSelection) (*models.Table, error) {
	topic := d.query.PrimaryTopic()

	switch view {
	case models.InterestOverTime:
		raw, err := d.source.InterestOverTime(ctx)
		if err != nil {
			return nil, err
		}
		return reshape.InterestOverTime(raw)

	case models.InterestByRegion:
		raw, err := d.source.InterestByRegion(ctx, trends.ResolutionCountry, true, false)
		if err != nil {
			return nil, err
		}
		return reshape.InterestByRegion(raw, topic)

	case models.RelatedTopics:
		results, err := d.source.RelatedTopics(ctx)
		if err != nil {
			return nil, err
		}
		related, ok := results[topic]
		if !ok {
			return nil, fmt.Errorf("related topics: provider returned nothing for %q", topic)
		}
		return reshape.RelatedTopics(related.Rising)

	case models.RelatedQueries:
		results, err := d.source.RelatedQueries(ctx)
		if err != nil {
			return nil, err
		}
		related, ok := results[topic]
		if !ok {
			return nil, fmt.Errorf("related queries: provider returned nothing for %q", topic)
		}
		return reshape.RelatedQueries(related.Rising)
	}

	return nil, fmt.Errorf("dispatch: %v is not a view", view)
}

// ensurePayload builds the provider payload on first use. A failed build is
// attempted again by the next dispatch.
func (d *Dispatcher) ensurePayload(ctx context.Context) error {
	d.payloadMu.Lock()
	defer d.payloadMu.Unlock()

	if d.payload {
		return nil
	}
	if err := d.source.BuildPayload(ctx); err != nil {
		return fmt.Errorf("build payload: %w", err)
	}
	d.payload = true
	return nil
}

func (d *Dispatcher) record(view models.ViewSelection, elapsed time.Duration, err error) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	d.stats.Total++
	if err != nil {
		d.stats.Failed++
	}
	d.totalTime += elapsed
	d.stats.AverageTime = d.totalTime / time.Duration(d.stats.Total)
	d.stats.LastView = view.Key()
}

func (d *Dispatcher) title(view models.ViewSelection) string {
	return fmt.Sprintf("%s: %s", view, d.query.PrimaryTopic())
}

// KindFor is the chart style each view is drawn with.
func KindFor(view models.ViewSelection) render.Kind {
	switch view {
	case models.InterestByRegion:
		return render.Bar
	case models.RelatedTopics, models.RelatedQueries:
		return render.Pie
	default:
		return render.Line
	}
}
