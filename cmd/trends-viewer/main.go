package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"trends-viewer/internal/config"
	"trends-viewer/internal/controllers"
	"trends-viewer/internal/logger"
	"trends-viewer/internal/render"
	"trends-viewer/internal/services"
	"trends-viewer/internal/shutdown"
	"trends-viewer/internal/trends"
	"trends-viewer/internal/views"
	"trends-viewer/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "Google Trends Data"
	AppID      = "com.trendsviewer.app"
	AppVersion = "1.0.0"

	metricsInterval = 30 * time.Second
)

// Application owns the window, the MVC components and their lifecycle
type Application struct {
	// Core components
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	config  *config.Config

	// MVC Components
	controller *controllers.MainController
	view       *views.MainView

	// Services
	dispatcher *services.Dispatcher

	// Lifecycle management
	shutdown *shutdown.Manager
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := NewApplication(ctx)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application execution failed: %v", err)
	}

	log.Println("Application terminated successfully")
}

// NewApplication loads configuration and wires every component
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.NewManager().Load(os.Getenv("TRENDS_CONFIG"))
	if err != nil {
		return nil, err
	}

	appLogger := newLogger(cfg.Log)

	query, err := cfg.Query.Parameters()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	exportDir := cfg.Export.Dir
	if exportDir == "" {
		if exportDir, err = services.ExecutableDir(); err != nil {
			return nil, err
		}
	}

	fyneApp := app.NewWithID(AppID)
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(AppName)
	window.Resize(calculateWindowSize())
	window.CenterOnScreen()

	appLogger.Info("Application starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"topic":      query.PrimaryTopic(),
		"timeframe":  query.Timeframe(),
		"export_dir": exportDir,
	})

	client := trends.NewClient(query, trends.Options{
		Timeout:     cfg.Client.Timeout,
		MinInterval: cfg.Client.MinInterval,
		Logger:      appLogger.With("trends"),
	})
	renderer := render.NewRenderer(components.ChartAreaWidth, components.ChartAreaHeight)
	dispatcher := services.NewDispatcher(query, client, renderer, services.NewCSVExporter(exportDir), appLogger.With("dispatcher"))

	shutdownManager := shutdown.NewManager(ctx, appLogger.With("shutdown"))

	mainController := controllers.NewMainController(shutdownManager.Context(), dispatcher, appLogger.With("controller"))
	mainView := views.NewMainView(window, query.PrimaryTopic())
	mainController.SetMainView(mainView)

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		config:     cfg,
		controller: mainController,
		view:       mainView,
		dispatcher: dispatcher,
		shutdown:   shutdownManager,
	}

	shutdownManager.Register("window", application.quit)
	shutdownManager.Register("controller", mainController.Shutdown)

	application.setupWindowEvents()

	return application, nil
}

// newLogger builds the process logger from the log section, letting
// LOG_LEVEL and DEBUG override the configured level.
func newLogger(cfg config.LogConfig) *logger.ZerologAdapter {
	level := determineLogLevel(logger.ParseLevel(cfg.Level))
	if cfg.Format == "json" {
		return logger.NewFileLogger(level, os.Stdout)
	}
	return logger.NewStructuredLogger(level)
}

// Run shows the window and blocks until the application quits
func (app *Application) Run() error {
	app.logger.Info("Starting application UI", nil)

	app.shutdown.Listen()
	app.view.Show()

	go app.startPerformanceMonitoring()

	app.fyneApp.Run()

	app.shutdown.Shutdown()
	return nil
}

// setupWindowEvents asks before closing and shuts down once closed
func (app *Application) setupWindowEvents() {
	app.window.SetCloseIntercept(func() {
		app.logger.Info("Window close requested", nil)

		app.view.ShowConfirm(
			"Exit Application",
			"Are you sure you want to exit?",
			func(confirmed bool) {
				if confirmed {
					go app.shutdown.Shutdown()
				}
			},
		)
	})
}

// quit stops the fyne event loop
func (app *Application) quit() {
	fyne.Do(func() {
		app.fyneApp.Quit()
	})
}

// startPerformanceMonitoring logs dispatch and memory statistics periodically
func (app *Application) startPerformanceMonitoring() {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.logPerformanceMetrics()
		case <-app.shutdown.Done():
			return
		}
	}
}

// logPerformanceMetrics logs current performance statistics
func (app *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := app.dispatcher.Stats()

	app.logger.Debug("Performance metrics", map[string]interface{}{
		"go_memory_mb":         memStats.Alloc / 1024 / 1024,
		"go_gc_runs":           memStats.NumGC,
		"dispatches":           stats.Total,
		"dispatches_failed":    stats.Failed,
		"avg_dispatch_time_ms": stats.AverageTime.Milliseconds(),
		"last_view":            stats.LastView,
		"goroutine_count":      runtime.NumGoroutine(),
	})

	app.view.SetMemoryInfo(memStats.Alloc)
}

// calculateWindowSize leaves room around the chart surface for the
// toolbar and status area
func calculateWindowSize() fyne.Size {
	return fyne.NewSize(components.ChartAreaWidth+80, components.ChartAreaHeight+160)
}

// determineLogLevel lets the environment override the configured level
func determineLogLevel(configured logger.LogLevel) logger.LogLevel {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logger.DebugLevel
	case "info":
		return logger.InfoLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		if os.Getenv("DEBUG") == "1" {
			return logger.DebugLevel
		}
		return configured
	}
}
