package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// sendAndClose serves the given frames then closes the socket normally.
func sendAndClose(frames ...[]byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, f); err != nil {
				return
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		// Wait for the client's close reply.
		_, _, _ = conn.ReadMessage()
	}
}

// holdOpen serves the given frames then blocks until the client goes away.
func holdOpen(frames ...[]byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, f); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// stateRecorder collects state transitions from a stream.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(st Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st.State)
}

func (r *stateRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestStream_ReadsUntilServerCloses(t *testing.T) {
	srv := httptest.NewServer(sendAndClose(
		reading("d1", "temperature_sensor", "temperature", 21.5),
		[]byte(`not json`),
		reading("d1", "temperature_sensor", "temperature", 22.5),
		reading("d2", "power_meter", "power", 3.0),
	))
	defer srv.Close()

	agg := NewAggregator(DefaultWindowSize)
	rec := &stateRecorder{}
	var samples int
	var mu sync.Mutex

	s := NewStream(StreamOptions{
		URL:          wsURL(srv),
		SimulationID: "sim-1",
		Aggregator:   agg,
		OnSample: func(Sample) {
			mu.Lock()
			samples++
			mu.Unlock()
		},
		OnState: rec.record,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	if samples != 3 {
		t.Errorf("samples = %d, want 3", samples)
	}
	mu.Unlock()

	d1, _ := agg.Series("d1")
	if d1.Stats.Count != 2 || d1.Stats.Avg != 22 {
		t.Errorf("d1 stats = %+v, want count 2 avg 22", d1.Stats)
	}

	want := []State{StateConnecting, StateOpen, StateClosed}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("states[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if s.Status().State != StateClosed {
		t.Errorf("final state = %s, want closed", s.Status().State)
	}
}

func TestStream_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewStream(StreamOptions{
		URL:        wsURL(srv),
		Aggregator: NewAggregator(DefaultWindowSize),
	})

	err := s.Run(context.Background())
	if !errors.Is(err, ErrDialFailed) {
		t.Fatalf("Run() error = %v, want ErrDialFailed", err)
	}
	st := s.Status()
	if st.State != StateError || st.Error == "" {
		t.Errorf("Status() = %+v, want error state with message", st)
	}
}

func TestStream_ConnectionLost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, reading("d1", "temperature_sensor", "temperature", 21.5))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		// Drop the TCP connection without a close frame.
		_ = conn.UnderlyingConn().Close()
	}))
	defer srv.Close()

	agg := NewAggregator(DefaultWindowSize)
	rec := &stateRecorder{}
	s := NewStream(StreamOptions{
		URL:          wsURL(srv),
		SimulationID: "sim-1",
		Aggregator:   agg,
		OnState:      rec.record,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Run(ctx)
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("Run() error = %v, want ErrConnectionLost", err)
	}

	want := []State{StateConnecting, StateOpen, StateError}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("states[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	st := s.Status()
	if st.State != StateError || st.Error == "" {
		t.Errorf("Status() = %+v, want error state with message", st)
	}
	if agg.DeviceCount() != 1 {
		t.Errorf("DeviceCount() = %d, want 1", agg.DeviceCount())
	}

	// No reconnect: a second Run on the failed stream returns at once.
	if err := s.Run(ctx); err != nil {
		t.Errorf("second Run() error = %v, want nil", err)
	}
	if s.Status().State != StateError {
		t.Errorf("state after second Run = %s, want error", s.Status().State)
	}
}

func TestStream_CloseStopsRun(t *testing.T) {
	srv := httptest.NewServer(holdOpen(reading("d1", "temperature_sensor", "temperature", 20)))
	defer srv.Close()

	agg := NewAggregator(DefaultWindowSize)
	first := make(chan struct{})
	var once sync.Once

	s := NewStream(StreamOptions{
		URL:        wsURL(srv),
		Aggregator: agg,
		OnSample:   func(Sample) { once.Do(func() { close(first) }) },
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first sample")
	}

	s.Close()
	s.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after Close", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	if s.Status().State != StateClosed {
		t.Errorf("state = %s, want closed", s.Status().State)
	}
}

func TestStream_ContextCancelStopsRun(t *testing.T) {
	srv := httptest.NewServer(holdOpen())
	defer srv.Close()

	opened := make(chan struct{})
	var once sync.Once

	s := NewStream(StreamOptions{
		URL:        wsURL(srv),
		Aggregator: NewAggregator(DefaultWindowSize),
		OnState: func(st Status) {
			if st.State == StateOpen {
				once.Do(func() { close(opened) })
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for open")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStream_CloseBeforeRun(t *testing.T) {
	s := NewStream(StreamOptions{URL: "ws://127.0.0.1:1", Aggregator: NewAggregator(1)})
	s.Close()

	if err := s.Run(context.Background()); err != nil {
		t.Errorf("Run() after Close error = %v, want nil", err)
	}
	if s.Status().State != StateClosed {
		t.Errorf("state = %s, want closed", s.Status().State)
	}
}

func TestMonitor_WatchSwitchesSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/ws/simulation/")
		holdOpen(reading(id+"-dev", "temperature_sensor", "temperature", 1))(w, r)
	}))
	defer srv.Close()

	samples := make(chan string, 16)
	m := NewMonitor(MonitorOptions{
		StreamURL: func(id string) string { return wsURL(srv) + "/ws/simulation/" + id },
		OnSample:  func(simID string, s Sample) { samples <- simID + ":" + s.DeviceID },
	})
	defer m.Stop()

	ctx := context.Background()

	m.Watch(ctx, "a")
	expectSample(t, samples, "a:a-dev")
	if got := m.SimulationID(); got != "a" {
		t.Errorf("SimulationID() = %q, want a", got)
	}

	m.Watch(ctx, "b")
	expectSample(t, samples, "b:b-dev")

	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].DeviceID != "b-dev" {
		t.Errorf("Snapshot() = %+v, want only b-dev", snap)
	}

	m.Stop()
	if m.SimulationID() != "" {
		t.Error("SimulationID() should be empty after Stop")
	}
	if m.Status().State != StateDisconnected {
		t.Errorf("Status() = %s, want disconnected when idle", m.Status().State)
	}
	if m.Snapshot() != nil {
		t.Error("Snapshot() should be nil when idle")
	}
}

func expectSample(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("sample = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}
