package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	Relay         RelayMetrics     `json:"relay"`
	Telemetry     TelemetryMetrics `json:"telemetry"`
	Pollers       PollerMetrics    `json:"pollers"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// RelayMetrics contains MQTT relay statistics.
type RelayMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// TelemetryMetrics describes the live telemetry session.
type TelemetryMetrics struct {
	SimulationID   string `json:"simulation_id,omitempty"`
	State          string `json:"state"`
	TrackedDevices int    `json:"tracked_devices"`
	WindowSize     int    `json:"window_size"`
}

// PollerMetrics describes the two list pollers.
type PollerMetrics struct {
	Buildings PollerStatus `json:"buildings"`
	Devices   PollerStatus `json:"devices"`
}

// PollerStatus is one poller's last outcome.
type PollerStatus struct {
	Items      int    `json:"items"`
	LastFetch  string `json:"last_fetch,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	BuildingID string `json:"building_id,omitempty"`
}

// handleMetrics returns process and session metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := s.monitor.Status()
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Telemetry: TelemetryMetrics{
			SimulationID:   s.monitor.SimulationID(),
			State:          string(status.State),
			TrackedDevices: len(s.monitor.Snapshot()),
			WindowSize:     s.windowSize,
		},
	}

	if s.relay != nil {
		metrics.Relay = RelayMetrics{
			Enabled:   true,
			Connected: s.relay.IsConnected(),
		}
	}

	buildings := s.buildings.Latest()
	metrics.Pollers.Buildings = PollerStatus{
		Items:     len(buildings.Value),
		LastFetch: formatTime(buildings.FetchedAt),
		LastError: errString(buildings.Err),
	}

	devices := s.devices.Latest()
	metrics.Pollers.Devices = PollerStatus{
		Items:      len(devices.Value.Devices),
		LastFetch:  formatTime(devices.FetchedAt),
		LastError:  errString(devices.Err),
		BuildingID: devices.Value.BuildingID,
	}

	writeJSON(w, http.StatusOK, metrics)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
