package simclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/nerrad567/simdash/internal/building"
)

// DefaultEventsPerSecond is the event rate requested when none is given.
const DefaultEventsPerSecond = 1.0

// Logger defines the logging interface used by the client.
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

// Config holds the simulator endpoints.
type Config struct {
	// APIURL is the HTTP base, e.g. https://sim.example.com
	APIURL string

	// WSURL is the websocket base, e.g. wss://sim.example.com
	WSURL string
}

// StartRequest starts a simulation run for one building.
type StartRequest struct {
	BuildingID      string  `json:"building_id"`
	DurationMinutes int     `json:"duration"`
	EventsPerSecond float64 `json:"events_per_second"`
}

// Client talks to the remote building simulator.
//
// Each call is a single request with no retries or caching. Deadlines come
// from the caller's context.
type Client struct {
	http   *resty.Client
	wsURL  string
	logger Logger
}

// New creates a client for the simulator at cfg.
func New(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		wsURL:  strings.TrimRight(cfg.WSURL, "/"),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// ListBuildings fetches every building the simulator knows about.
func (c *Client) ListBuildings(ctx context.Context) ([]building.Building, error) {
	const op = "list buildings"

	var out struct {
		Buildings []building.Building `json:"buildings"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/buildings")
	if err := c.check(op, resp, err); err != nil {
		return nil, err
	}

	if out.Buildings == nil {
		out.Buildings = []building.Building{}
	}
	return out.Buildings, nil
}

// CreateBuilding submits a building and returns the simulator's copy.
func (c *Client) CreateBuilding(ctx context.Context, req building.CreateRequest) (building.Building, error) {
	const op = "create building"

	var out struct {
		Building building.Building `json:"building"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/buildings")
	if err := c.check(op, resp, err); err != nil {
		return building.Building{}, err
	}

	c.logger.Info("building created", "building_id", out.Building.ID, "name", out.Building.Name)
	return out.Building, nil
}

// DeleteBuilding removes a building.
func (c *Client) DeleteBuilding(ctx context.Context, id string) error {
	const op = "delete building"

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/buildings/{id}")
	if err := c.check(op, resp, err); err != nil {
		return err
	}

	c.logger.Info("building deleted", "building_id", id)
	return nil
}

// ListDevices fetches the flat device list of a building.
func (c *Client) ListDevices(ctx context.Context, buildingID string) ([]building.Device, error) {
	const op = "list devices"

	var out struct {
		Devices []building.Device `json:"devices"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", buildingID).
		SetResult(&out).
		Get("/buildings/{id}/devices")
	if err := c.check(op, resp, err); err != nil {
		return nil, err
	}

	if out.Devices == nil {
		out.Devices = []building.Device{}
	}
	return out.Devices, nil
}

// StartSimulation starts a run and returns its simulation ID.
// A zero EventsPerSecond uses DefaultEventsPerSecond.
func (c *Client) StartSimulation(ctx context.Context, req StartRequest) (string, error) {
	const op = "start simulation"

	if req.BuildingID == "" {
		return "", ErrNoBuilding
	}
	if req.EventsPerSecond == 0 {
		req.EventsPerSecond = DefaultEventsPerSecond
	}

	var out struct {
		SimulationID string `json:"simulation_id"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/simulation/start")
	if err := c.check(op, resp, err); err != nil {
		return "", err
	}
	if out.SimulationID == "" {
		return "", &APIError{Op: op, StatusCode: resp.StatusCode(), Message: "response has no simulation_id"}
	}

	c.logger.Info("simulation started",
		"simulation_id", out.SimulationID,
		"building_id", req.BuildingID,
		"duration_minutes", req.DurationMinutes,
	)
	return out.SimulationID, nil
}

// StopSimulation stops a running simulation.
func (c *Client) StopSimulation(ctx context.Context, simulationID string) error {
	const op = "stop simulation"

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", simulationID).
		Post("/simulation/{id}/stop")
	if err := c.check(op, resp, err); err != nil {
		return err
	}

	c.logger.Info("simulation stopped", "simulation_id", simulationID)
	return nil
}

// SimulationStreamURL returns the telemetry socket URL for a simulation.
func (c *Client) SimulationStreamURL(simulationID string) string {
	return c.wsURL + "/ws/simulation/" + url.PathEscape(simulationID)
}

// BuildingStreamURL returns the sensor socket URL for a building.
func (c *Client) BuildingStreamURL(buildingID string) string {
	return c.wsURL + "/ws/building/" + url.PathEscape(buildingID)
}

// check turns a transport error or non-2xx response into an error.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Error("simulator request failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode(),
		Message:    errorMessage(resp.Body()),
	}
	c.logger.Warn("simulator returned error",
		"op", op,
		"status", apiErr.StatusCode,
		"message", apiErr.Message,
	)
	return apiErr
}

// errorMessage extracts "detail" from a JSON error body, falling back to the
// trimmed body text.
func errorMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(body))
}
