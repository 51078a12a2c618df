package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/scene"
	"github.com/nerrad567/simdash/internal/simclient"
)

// devicesView is the floor-grouped device list for one building.
type devicesView struct {
	BuildingID string                  `json:"building_id"`
	Floors     []building.FloorDevices `json:"floors"`
	Active     int                     `json:"active"`
	Total      int                     `json:"total"`
	LastUpdate string                  `json:"last_update,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

func newDevicesView(list deviceList, fetchedAt time.Time, err error) devicesView {
	floors := building.GroupByFloor(list.Devices)
	if floors == nil {
		floors = []building.FloorDevices{}
	}
	return devicesView{
		BuildingID: list.BuildingID,
		Floors:     floors,
		Active:     building.CountActive(list.Devices),
		Total:      len(list.Devices),
		LastUpdate: formatTime(fetchedAt),
		Error:      errString(err),
	}
}

// upstreamMessage returns the simulator's own message for err when it has one.
func upstreamMessage(err error) string {
	var apiErr *simclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// handleListBuildings returns the polled building list.
//
// Query parameters:
//   - refresh: "true" fetches from the simulator before answering
//
// A failed fetch keeps the previous list and reports the error alongside it.
func (s *Server) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		_, _ = s.buildings.Refresh(r.Context()) //nolint:errcheck // reported via Latest
	}

	latest := s.buildings.Latest()
	if latest.FetchedAt.IsZero() && latest.Err != nil {
		writeBadGateway(w, upstreamMessage(latest.Err))
		return
	}

	list := latest.Value
	if list == nil {
		list = []building.Building{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"buildings":   list,
		"count":       len(list),
		"last_update": formatTime(latest.FetchedAt),
		"error":       errString(latest.Err),
	})
}

// handleCreateBuilding builds the nested creation payload from a form and
// creates the building on the simulator.
func (s *Server) handleCreateBuilding(w http.ResponseWriter, r *http.Request) {
	form := building.DefaultForm()
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	req, err := building.NewCreateRequest(form)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	created, err := s.sim.CreateBuilding(r.Context(), req)
	if err != nil {
		s.logger.Error("creating building failed", "name", req.Name, "error", err)
		s.notes.Error("Building not created", upstreamMessage(err))
		writeBadGateway(w, upstreamMessage(err))
		return
	}

	s.logger.Info("building created", "building_id", created.ID, "name", created.Name, "rooms", req.RoomCount())
	s.notes.Success("Building created", created.Name)
	s.buildings.Kick()

	writeJSON(w, http.StatusCreated, map[string]any{"building": created})
}

// handleDeleteBuilding deletes a building on the simulator.
func (s *Server) handleDeleteBuilding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.sim.DeleteBuilding(r.Context(), id); err != nil {
		if simclient.IsNotFound(err) {
			writeNotFound(w, "building not found")
			return
		}
		s.logger.Error("deleting building failed", "building_id", id, "error", err)
		s.notes.Error("Building not deleted", upstreamMessage(err))
		writeBadGateway(w, upstreamMessage(err))
		return
	}

	s.logger.Info("building deleted", "building_id", id)
	s.notes.Success("Building deleted", id)
	if s.selectedBuilding() == id {
		s.selectBuilding("")
	}
	s.buildings.Kick()

	w.WriteHeader(http.StatusNoContent)
}

// handleListDevices returns a building's devices grouped by floor and makes
// it the building whose devices are polled.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.selectBuilding(id)

	list, err := s.devices.Refresh(r.Context())
	if err != nil && list.BuildingID != id {
		if simclient.IsNotFound(err) {
			writeNotFound(w, "building not found")
			return
		}
		writeBadGateway(w, upstreamMessage(err))
		return
	}

	latest := s.devices.Latest()
	writeJSON(w, http.StatusOK, newDevicesView(list, latest.FetchedAt, err))
}

// handleGetScene returns the 3D model of a building and its flattened boxes.
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, ok := findBuilding(s.buildings.Latest().Value, id)
	if !ok {
		list, err := s.buildings.Refresh(r.Context())
		if err != nil && len(list) == 0 {
			writeBadGateway(w, upstreamMessage(err))
			return
		}
		b, ok = findBuilding(list, id)
	}
	if !ok {
		writeNotFound(w, "building not found")
		return
	}

	model := scene.ToBuilding3D(b)
	writeJSON(w, http.StatusOK, map[string]any{
		"building": model,
		"boxes":    scene.Flatten(model),
	})
}

func findBuilding(list []building.Building, id string) (building.Building, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return building.Building{}, false
}
