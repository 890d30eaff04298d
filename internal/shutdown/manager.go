package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"trends-viewer/internal/logger"
)

// DefaultStepTimeout bounds each registered step.
const DefaultStepTimeout = 10 * time.Second

type step struct {
	name string
	fn   func()
}

// Manager runs named cleanup steps once, in reverse registration order.
type Manager struct {
	steps       []step
	logger      logger.Logger
	stepTimeout time.Duration

	mu     sync.Mutex
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(parent context.Context, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(parent)

	return &Manager{
		logger:      log,
		stepTimeout: DefaultStepTimeout,
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetStepTimeout overrides DefaultStepTimeout.
func (m *Manager) SetStepTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepTimeout = d
}

func (m *Manager) Register(name string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Listen shuts down on SIGINT or SIGTERM, or when the parent context ends.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			m.logger.Info("System signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.ctx.Done():
			m.Shutdown()
		case <-m.done:
		}
	}()
}

// Shutdown cancels Context and runs every step. Later calls return at once.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		return
	default:
		close(m.done)
	}
	steps := append([]step(nil), m.steps...)
	timeout := m.stepTimeout
	m.mu.Unlock()

	m.logger.Info("Shutdown sequence initiated", map[string]interface{}{
		"steps": len(steps),
	})

	m.cancel()

	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			s.fn()
		}()

		select {
		case <-finished:
			m.logger.Debug("Shutdown step completed", map[string]interface{}{
				"step": s.name,
			})
		case <-time.After(timeout):
			m.logger.Warning("Shutdown step timeout", map[string]interface{}{
				"step": s.name,
			})
		}
	}

	m.logger.Info("Shutdown sequence completed", nil)
}

// Context is cancelled as soon as Shutdown starts.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
