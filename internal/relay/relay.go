package relay

import (
	"errors"
	"time"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/infrastructure/mqtt"
	"github.com/nerrad567/simdash/internal/telemetry"
)

// Publisher is the MQTT side of the relay. *mqtt.Client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
	IsConnected() bool
}

// Logger is the logging interface used by the relay.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// SamplePayload is published for every accepted sample.
type SamplePayload struct {
	SimulationID string              `json:"simulation_id"`
	DeviceID     string              `json:"device_id"`
	Type         building.DeviceType `json:"type"`
	Field        string              `json:"field"`
	Unit         string              `json:"unit"`
	Value        float64             `json:"value"`
	Timestamp    string              `json:"timestamp"`
	Stats        telemetry.Stats     `json:"stats"`
}

// StatePayload is published, retained, on every stream state change.
type StatePayload struct {
	SimulationID string          `json:"simulation_id"`
	State        telemetry.State `json:"state"`
	Error        string          `json:"error,omitempty"`
	Since        string          `json:"since"`
}

// Relay forwards telemetry to a Publisher.
type Relay struct {
	pub    Publisher
	logger Logger
	topics mqtt.Topics
}

// New creates a relay over pub.
func New(pub Publisher) *Relay {
	return &Relay{pub: pub, logger: noopLogger{}}
}

// SetLogger sets the logger for publish failures.
func (r *Relay) SetLogger(logger Logger) {
	r.logger = logger
}

// IsConnected reports whether the broker connection is up.
func (r *Relay) IsConnected() bool {
	return r.pub.IsConnected()
}

// PublishSample publishes one accepted sample with its device's stats.
func (r *Relay) PublishSample(simulationID string, s telemetry.Sample) {
	payload := SamplePayload{
		SimulationID: simulationID,
		DeviceID:     s.DeviceID,
		Type:         s.Type,
		Field:        telemetry.FieldFor(s.Type),
		Unit:         building.DisplayInfo(s.Type).Unit,
		Value:        s.Point.Value,
		Timestamp:    s.Point.Timestamp.UTC().Format(time.RFC3339Nano),
		Stats:        s.Stats,
	}
	r.publish(r.topics.Telemetry(simulationID, s.DeviceID), payload, false)
}

// PublishState publishes a stream status. Statuses without a simulation
// (the idle monitor) are not published.
func (r *Relay) PublishState(st telemetry.Status) {
	if st.SimulationID == "" {
		return
	}
	payload := StatePayload{
		SimulationID: st.SimulationID,
		State:        st.State,
		Error:        st.Error,
		Since:        st.Since.UTC().Format(time.RFC3339),
	}
	r.publish(r.topics.SimulationState(st.SimulationID), payload, true)
}

func (r *Relay) publish(topic string, v any, retained bool) {
	err := r.pub.PublishJSON(topic, v, retained)
	switch {
	case err == nil:
	case errors.Is(err, mqtt.ErrNotConnected):
		r.logger.Debug("relay publish skipped, broker disconnected", "topic", topic)
	default:
		r.logger.Warn("relay publish failed", "topic", topic, "error", err)
	}
}
