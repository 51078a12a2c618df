package relay

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/infrastructure/mqtt"
	"github.com/nerrad567/simdash/internal/telemetry"
)

type published struct {
	topic    string
	payload  any
	retained bool
}

type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	err       error
	messages  []published
}

func (f *fakePublisher) PublishJSON(topic string, v any, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{topic: topic, payload: v, retained: retained})
	return nil
}

func (f *fakePublisher) IsConnected() bool { return f.connected }

type countingLogger struct {
	debug, warn int
}

func (l *countingLogger) Debug(string, ...any) { l.debug++ }
func (l *countingLogger) Warn(string, ...any)  { l.warn++ }

func TestPublishSample(t *testing.T) {
	pub := &fakePublisher{connected: true}
	r := New(pub)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.PublishSample("sim-1", telemetry.Sample{
		DeviceID: "b1_floor_0_room_0_power_meter",
		Type:     building.DeviceTypePowerMeter,
		Point:    telemetry.Point{Timestamp: ts, Value: 42},
		Stats:    telemetry.Stats{Last: 42, Min: 40, Max: 44, Avg: 42, Count: 3},
	})

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.topic != "simdash/telemetry/sim-1/b1_floor_0_room_0_power_meter" {
		t.Errorf("topic = %q", msg.topic)
	}
	if msg.retained {
		t.Error("samples must not be retained")
	}

	p, ok := msg.payload.(SamplePayload)
	if !ok {
		t.Fatalf("payload type = %T", msg.payload)
	}
	if p.Field != telemetry.FieldCurrentPower || p.Unit != "kW" || p.Value != 42 || p.Stats.Count != 3 {
		t.Errorf("payload = %+v", p)
	}
	if p.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("timestamp = %q", p.Timestamp)
	}
}

func TestPublishState(t *testing.T) {
	pub := &fakePublisher{connected: true}
	r := New(pub)

	r.PublishState(telemetry.Status{SimulationID: "sim-1", State: telemetry.StateError, Error: "lost", Since: time.Now()})
	r.PublishState(telemetry.Status{State: telemetry.StateDisconnected})

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1 (idle status skipped)", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.topic != "simdash/simulation/sim-1/state" || !msg.retained {
		t.Errorf("message = %s retained=%v, want retained state topic", msg.topic, msg.retained)
	}
	p := msg.payload.(StatePayload)
	if p.State != telemetry.StateError || p.Error != "lost" {
		t.Errorf("payload = %+v", p)
	}
}

func TestPublishFailuresAreLogged(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantDebug int
		wantWarn  int
	}{
		{"disconnected", mqtt.ErrNotConnected, 1, 0},
		{"publish failed", errors.New("broker said no"), 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &countingLogger{}
			r := New(&fakePublisher{err: tt.err})
			r.SetLogger(logger)

			r.PublishSample("sim-1", telemetry.Sample{DeviceID: "d1", Type: building.DeviceTypeTemperatureSensor})

			if logger.debug != tt.wantDebug || logger.warn != tt.wantWarn {
				t.Errorf("debug/warn = %d/%d, want %d/%d", logger.debug, logger.warn, tt.wantDebug, tt.wantWarn)
			}
		})
	}
}

func TestIsConnected(t *testing.T) {
	pub := &fakePublisher{}
	r := New(pub)
	if r.IsConnected() {
		t.Error("IsConnected() = true, want false")
	}
	pub.connected = true
	if !r.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}
