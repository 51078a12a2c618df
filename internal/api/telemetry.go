package api

import (
	"net/http"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/telemetry"
)

// SampleEvent is the payload of a telemetry.sample broadcast.
type SampleEvent struct {
	SimulationID string           `json:"simulation_id"`
	Window       int              `json:"window"`
	Display      building.Display `json:"display"`
	Sample       telemetry.Sample `json:"sample"`
}

// NewSampleEvent wraps an accepted sample with what the dashboard needs to
// draw it.
func NewSampleEvent(simulationID string, window int, sample telemetry.Sample) SampleEvent {
	return SampleEvent{
		SimulationID: simulationID,
		Window:       window,
		Display:      building.DisplayInfo(sample.Type),
		Sample:       sample,
	}
}

// seriesView is one device's window with display hints.
type seriesView struct {
	DeviceID string              `json:"device_id"`
	Type     building.DeviceType `json:"type"`
	Field    string              `json:"field"`
	Display  building.Display    `json:"display"`
	Points   []telemetry.Point   `json:"points"`
	Stats    telemetry.Stats     `json:"stats"`
}

// handleGetTelemetry returns every tracked device's window and statistics,
// sorted by device id. Devices seen without an accepted value have no points.
func (s *Server) handleGetTelemetry(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.monitor.Snapshot()
	series := make([]seriesView, 0, len(snapshot))
	for _, sr := range snapshot {
		points := sr.Points
		if points == nil {
			points = []telemetry.Point{}
		}
		series = append(series, seriesView{
			DeviceID: sr.DeviceID,
			Type:     sr.Type,
			Field:    telemetry.FieldFor(sr.Type),
			Display:  building.DisplayInfo(sr.Type),
			Points:   points,
			Stats:    sr.Stats,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"simulation_id": s.monitor.SimulationID(),
		"window":        s.windowSize,
		"series":        series,
	})
}
