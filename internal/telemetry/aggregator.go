package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/simdash/internal/building"
)

// Logger defines the logging interface used by the telemetry package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sample is an accepted reading together with the device's updated stats.
type Sample struct {
	DeviceID string              `json:"device_id"`
	Type     building.DeviceType `json:"type"`
	Point    Point               `json:"point"`
	Stats    Stats               `json:"stats"`
}

// Series is a point-in-time copy of one device's window.
type Series struct {
	DeviceID string              `json:"device_id"`
	Type     building.DeviceType `json:"type"`
	Points   []Point             `json:"points"`
	Stats    Stats               `json:"stats"`
}

// entry is the per-device state. Type is fixed at first sighting.
type entry struct {
	typ    building.DeviceType
	window *Window
	stats  Stats
}

// Aggregator folds telemetry messages into per-device rolling windows.
//
// Device entries are created lazily the first time a well-formed message
// names them and live until the aggregator is discarded. All methods are
// safe for concurrent use.
type Aggregator struct {
	mu       sync.RWMutex
	capacity int
	series   map[string]*entry
	logger   Logger
}

// NewAggregator creates an aggregator keeping capacity points per device.
// A capacity below 1 uses DefaultWindowSize.
func NewAggregator(capacity int) *Aggregator {
	if capacity < 1 {
		capacity = DefaultWindowSize
	}
	return &Aggregator{
		capacity: capacity,
		series:   make(map[string]*entry),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the aggregator.
func (a *Aggregator) SetLogger(logger Logger) {
	a.logger = logger
}

// Ingest decodes a raw socket payload and folds it into the device's window.
//
// Returns ErrMalformedMessage or ErrInvalidValue when the message is dropped;
// neither affects any other device's state.
func (a *Aggregator) Ingest(raw []byte, receivedAt time.Time) (Sample, error) {
	msg, err := Decode(raw)
	if err != nil {
		return Sample{}, err
	}
	return a.Add(msg, receivedAt)
}

// Add folds an already-decoded message into the device's window.
//
// The device entry is created on first sighting even when the value is then
// rejected, so the device appears in snapshots with an empty window.
func (a *Aggregator) Add(msg Message, receivedAt time.Time) (Sample, error) {
	if msg.DeviceID == "" || msg.Type == "" || msg.Data == nil {
		return Sample{}, ErrMalformedMessage
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.series[msg.DeviceID]
	if !ok {
		e = &entry{typ: msg.Type, window: NewWindow(a.capacity)}
		a.series[msg.DeviceID] = e
		a.logger.Debug("tracking device", "device_id", msg.DeviceID, "type", msg.Type)
	}

	value, err := msg.Value()
	if err != nil {
		return Sample{}, err
	}

	p := Point{Timestamp: receivedAt, Value: value}
	e.window.Push(p)
	e.stats = e.window.Stats()

	return Sample{
		DeviceID: msg.DeviceID,
		Type:     e.typ,
		Point:    p,
		Stats:    e.stats,
	}, nil
}

// Series returns a copy of one device's window and stats.
func (a *Aggregator) Series(deviceID string) (Series, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.series[deviceID]
	if !ok {
		return Series{}, false
	}
	return e.snapshot(deviceID), true
}

// Snapshot returns copies of every tracked device, ordered by device ID.
func (a *Aggregator) Snapshot() []Series {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Series, 0, len(a.series))
	for id, e := range a.series {
		out = append(out, e.snapshot(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

// DeviceCount returns the number of tracked devices.
func (a *Aggregator) DeviceCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.series)
}

func (e *entry) snapshot(id string) Series {
	return Series{
		DeviceID: id,
		Type:     e.typ,
		Points:   e.window.Points(),
		Stats:    e.stats,
	}
}
