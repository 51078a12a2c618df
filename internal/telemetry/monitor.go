package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// URLFunc maps a simulation ID to the websocket URL of its telemetry stream.
type URLFunc func(simulationID string) string

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	// StreamURL builds the telemetry URL for a simulation. Required.
	StreamURL URLFunc

	// WindowSize is the per-device window capacity for each session.
	WindowSize int

	Dialer *websocket.Dialer
	Logger Logger

	// OnSample is called for every accepted sample of the active session.
	OnSample func(simulationID string, s Sample)

	// OnState is called on every state transition of the active session.
	OnState func(Status)
}

// session is one watched simulation: its stream, aggregator and goroutine.
type session struct {
	simID  string
	agg    *Aggregator
	stream *Stream
	done   chan struct{}
}

// Monitor owns at most one telemetry session at a time.
//
// Watching a new simulation tears the previous session down, including its
// aggregator, so no state carries over between simulations.
type Monitor struct {
	opts   MonitorOptions
	logger Logger

	// lifecycle serialises Watch and Stop.
	lifecycle sync.Mutex

	mu     sync.Mutex
	active *session
}

// NewMonitor creates an idle monitor.
func NewMonitor(opts MonitorOptions) *Monitor {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	if opts.WindowSize < 1 {
		opts.WindowSize = DefaultWindowSize
	}
	return &Monitor{opts: opts, logger: logger}
}

// Watch starts streaming telemetry for simulationID under ctx.
//
// Watching the simulation already being watched is a no-op while its stream
// is still live. An empty simulationID behaves like Stop.
func (m *Monitor) Watch(ctx context.Context, simulationID string) {
	if simulationID == "" {
		m.Stop()
		return
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if m.active != nil && m.active.simID == simulationID && !m.active.stream.Status().State.IsTerminal() {
		m.mu.Unlock()
		return
	}
	prev := m.active
	m.active = nil
	m.mu.Unlock()

	teardown(prev)

	agg := NewAggregator(m.opts.WindowSize)
	agg.SetLogger(m.logger)

	sess := &session{
		simID: simulationID,
		agg:   agg,
		done:  make(chan struct{}),
	}
	sess.stream = NewStream(StreamOptions{
		URL:          m.opts.StreamURL(simulationID),
		SimulationID: simulationID,
		Aggregator:   agg,
		Dialer:       m.opts.Dialer,
		Logger:       m.logger,
		OnSample: func(s Sample) {
			if m.opts.OnSample != nil {
				m.opts.OnSample(simulationID, s)
			}
		},
		OnState: m.opts.OnState,
	})

	m.mu.Lock()
	m.active = sess
	m.mu.Unlock()

	m.logger.Info("watching simulation telemetry", "simulation_id", simulationID)

	go func() {
		defer close(sess.done)
		if err := sess.stream.Run(ctx); err != nil {
			m.logger.Warn("telemetry session ended", "simulation_id", simulationID, "error", err)
		}
	}()
}

// Stop tears down the active session, if any, and waits for it to finish.
func (m *Monitor) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	prev := m.active
	m.active = nil
	m.mu.Unlock()

	if prev != nil {
		m.logger.Info("stopped watching simulation telemetry", "simulation_id", prev.simID)
	}
	teardown(prev)
}

// SimulationID returns the watched simulation, or "" when idle.
func (m *Monitor) SimulationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.simID
}

// Status returns the active stream's status, or disconnected when idle.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess == nil {
		return Status{State: StateDisconnected, Since: time.Now()}
	}
	return sess.stream.Status()
}

// Snapshot returns the active session's series, or nil when idle.
func (m *Monitor) Snapshot() []Series {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess == nil {
		return nil
	}
	return sess.agg.Snapshot()
}

// Series returns one device's series from the active session.
func (m *Monitor) Series(deviceID string) (Series, bool) {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess == nil {
		return Series{}, false
	}
	return sess.agg.Series(deviceID)
}

// Done returns a channel closed when the active session's stream ends.
// Returns nil when idle.
func (m *Monitor) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	return m.active.done
}

func teardown(sess *session) {
	if sess == nil {
		return
	}
	sess.stream.Close()
	<-sess.done
}
