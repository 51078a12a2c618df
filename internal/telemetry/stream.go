package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the lifecycle state of a telemetry stream.
type State string

// Stream states. A stream moves disconnected → connecting → open and ends
// in either closed or error. There is no automatic reconnect.
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateError        State = "error"
	StateClosed       State = "closed"
)

// closeWriteTimeout bounds the close frame written on teardown.
const closeWriteTimeout = time.Second

// Status describes a stream's current state.
type Status struct {
	SimulationID string    `json:"simulation_id,omitempty"`
	State        State     `json:"state"`
	Error        string    `json:"error,omitempty"`
	Since        time.Time `json:"since"`
}

// StreamOptions configures a Stream.
type StreamOptions struct {
	// URL is the full websocket URL to dial.
	URL string

	// SimulationID labels the stream in status reports.
	SimulationID string

	// Aggregator receives every message read from the socket. Required.
	Aggregator *Aggregator

	// Dialer overrides websocket.DefaultDialer.
	Dialer *websocket.Dialer

	Logger Logger

	// OnSample is called for every accepted sample. Optional.
	OnSample func(Sample)

	// OnState is called on every state transition. Optional.
	OnState func(Status)
}

// Stream is a single telemetry websocket connection feeding an Aggregator.
type Stream struct {
	opts   StreamOptions
	dialer *websocket.Dialer
	logger Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	closed bool
	status Status
}

// NewStream creates a stream in the disconnected state. Call Run to connect.
func NewStream(opts StreamOptions) *Stream {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Stream{
		opts:   opts,
		dialer: dialer,
		logger: logger,
		status: Status{
			SimulationID: opts.SimulationID,
			State:        StateDisconnected,
			Since:        time.Now(),
		},
	}
}

// Status returns the stream's current state.
func (s *Stream) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Run dials the socket and reads messages until the socket closes, ctx is
// cancelled, or Close is called. It blocks for the life of the connection.
//
// Returns nil on an orderly close and ErrDialFailed or ErrConnectionLost
// otherwise; in those cases the stream is left in StateError.
func (s *Stream) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.cancel = cancel
	s.mu.Unlock()

	s.setState(StateConnecting, "")

	conn, resp, err := s.dialer.DialContext(ctx, s.opts.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close() //nolint:errcheck // handshake response body only
	}
	if err != nil {
		if s.isClosed() || ctx.Err() != nil {
			s.setState(StateClosed, "")
			return nil
		}
		s.setState(StateError, err.Error())
		return fmt.Errorf("%w: %s: %w", ErrDialFailed, s.opts.URL, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close() //nolint:errcheck // closed during dial
		s.setState(StateClosed, "")
		return nil
	}
	s.conn = conn
	s.mu.Unlock()

	s.setState(StateOpen, "")
	s.logger.Info("telemetry stream open", "simulation_id", s.opts.SimulationID)

	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return s.readFailed(err)
		}
		s.handleMessage(data)
	}
}

// Close tears the stream down. Safe to call more than once and before Run.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout)) //nolint:errcheck // best effort
		conn.Close()                                                                         //nolint:errcheck // teardown
	}
	if s.Status().State != StateError {
		s.setState(StateClosed, "")
	}
}

func (s *Stream) handleMessage(data []byte) {
	sample, err := s.opts.Aggregator.Ingest(data, time.Now())
	if err != nil {
		if errors.Is(err, ErrInvalidValue) {
			s.logger.Debug("dropping telemetry value", "simulation_id", s.opts.SimulationID, "error", err)
		} else {
			s.logger.Warn("dropping telemetry message", "simulation_id", s.opts.SimulationID, "error", err)
		}
		return
	}
	if s.opts.OnSample != nil {
		s.opts.OnSample(sample)
	}
}

func (s *Stream) readFailed(err error) error {
	if s.isClosed() {
		s.setState(StateClosed, "")
		return nil
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Info("telemetry stream closed by server", "simulation_id", s.opts.SimulationID)
		s.markClosed()
		s.setState(StateClosed, "")
		return nil
	}

	s.logger.Warn("telemetry stream failed", "simulation_id", s.opts.SimulationID, "error", err)
	s.setState(StateError, err.Error())
	s.markClosed()
	return fmt.Errorf("%w: %w", ErrConnectionLost, err)
}

func (s *Stream) markClosed() {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close() //nolint:errcheck // already failed
	}
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) setState(state State, errMsg string) {
	s.mu.Lock()
	if s.status.State == state && s.status.Error == errMsg {
		s.mu.Unlock()
		return
	}
	s.status = Status{
		SimulationID: s.opts.SimulationID,
		State:        state,
		Error:        errMsg,
		Since:        time.Now(),
	}
	st := s.status
	s.mu.Unlock()

	if s.opts.OnState != nil {
		s.opts.OnState(st)
	}
}

// IsTerminal reports whether the state ends a stream's life.
func (st State) IsTerminal() bool {
	return st == StateClosed || st == StateError
}
