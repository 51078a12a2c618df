package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/simclient"
	"github.com/nerrad567/simdash/internal/telemetry"
)

// startSimulationRequest is the body of POST /simulation/start.
type startSimulationRequest struct {
	BuildingID    string `json:"building_id"`
	DurationHours *int   `json:"duration_hours"`
}

// SimulationView is the state of the watched simulation.
type SimulationView struct {
	SimulationID string          `json:"simulation_id,omitempty"`
	State        telemetry.State `json:"state"`
	Error        string          `json:"error,omitempty"`
	Since        string          `json:"since,omitempty"`
	Devices      int             `json:"devices"`

	// Simulation is the run's status block. Nil when nothing is watched.
	Simulation *building.SimulationData `json:"simulation,omitempty"`
}

// NewSimulationView describes a telemetry stream status for the dashboard.
// devices is the number of devices reporting so far.
func NewSimulationView(status telemetry.Status, devices int, eventsPerSecond float64) SimulationView {
	view := SimulationView{
		SimulationID: status.SimulationID,
		State:        status.State,
		Error:        status.Error,
		Since:        formatTime(status.Since),
		Devices:      devices,
	}
	if status.SimulationID != "" {
		view.Simulation = &building.SimulationData{
			Status:             string(status.State),
			ActiveDevicesCount: devices,
			EventsPerSecond:    eventsPerSecond,
		}
	}
	return view
}

func (s *Server) simulationView() SimulationView {
	return NewSimulationView(s.monitor.Status(), len(s.monitor.Snapshot()), s.eventsPerSecond())
}

// eventsPerSecond is the rate sent with every start request.
func (s *Server) eventsPerSecond() float64 {
	if s.simCfg.EventsPerSecond <= 0 {
		return simclient.DefaultEventsPerSecond
	}
	return s.simCfg.EventsPerSecond
}

// handleGetSimulation returns the watched simulation and its stream state.
func (s *Server) handleGetSimulation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.simulationView())
}

// handleStartSimulation starts a simulation on the simulator and begins
// streaming its telemetry. Any previous session is torn down first.
//
// The duration defaults to simulator.default_duration_hours and must be at
// least one hour.
func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	var body startSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if body.BuildingID == "" {
		writeBadRequest(w, "building_id is required")
		return
	}

	hours := s.simCfg.DefaultDurationHours
	if hours < 1 {
		hours = 24
	}
	if body.DurationHours != nil {
		hours = *body.DurationHours
	}
	if hours < 1 {
		writeValidationError(w, "duration_hours must be at least 1")
		return
	}

	simID, err := s.sim.StartSimulation(r.Context(), simclient.StartRequest{
		BuildingID:      body.BuildingID,
		DurationMinutes: hours * 60,
		EventsPerSecond: s.eventsPerSecond(),
	})
	if err != nil {
		s.logger.Error("starting simulation failed", "building_id", body.BuildingID, "error", err)
		s.notes.Error("Simulation not started", upstreamMessage(err))
		writeBadGateway(w, upstreamMessage(err))
		return
	}

	s.logger.Info("simulation started", "simulation_id", simID, "building_id", body.BuildingID, "duration_hours", hours)
	s.monitor.Watch(s.srvCtx, simID)
	s.notes.Success("Simulation started", simID)

	view := s.simulationView()
	s.hub.Broadcast(EventSimulationState, view)
	writeJSON(w, http.StatusOK, view)
}

// handleStopSimulation stops the watched simulation on the simulator and
// closes its telemetry stream. The collected series are discarded.
func (s *Server) handleStopSimulation(w http.ResponseWriter, r *http.Request) {
	simID := s.monitor.SimulationID()
	if simID == "" {
		writeConflict(w, "no active simulation")
		return
	}

	if err := s.sim.StopSimulation(r.Context(), simID); err != nil {
		s.logger.Error("stopping simulation failed", "simulation_id", simID, "error", err)
		s.notes.Error("Simulation not stopped", upstreamMessage(err))
		writeBadGateway(w, upstreamMessage(err))
		return
	}

	s.monitor.Stop()
	s.logger.Info("simulation stopped", "simulation_id", simID)
	s.notes.Info("Simulation stopped", simID)

	view := s.simulationView()
	s.hub.Broadcast(EventSimulationState, view)
	writeJSON(w, http.StatusOK, view)
}
