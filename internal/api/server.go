package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/infrastructure/config"
	"github.com/nerrad567/simdash/internal/infrastructure/logging"
	"github.com/nerrad567/simdash/internal/notify"
	"github.com/nerrad567/simdash/internal/poller"
	"github.com/nerrad567/simdash/internal/simclient"
	"github.com/nerrad567/simdash/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Simulator is the remote simulator API as used by the server.
// *simclient.Client satisfies it.
type Simulator interface {
	ListBuildings(ctx context.Context) ([]building.Building, error)
	CreateBuilding(ctx context.Context, req building.CreateRequest) (building.Building, error)
	DeleteBuilding(ctx context.Context, id string) error
	ListDevices(ctx context.Context, buildingID string) ([]building.Device, error)
	StartSimulation(ctx context.Context, req simclient.StartRequest) (string, error)
	StopSimulation(ctx context.Context, simulationID string) error
}

// Monitor is the live telemetry session as used by the server.
// *telemetry.Monitor satisfies it.
type Monitor interface {
	Watch(ctx context.Context, simulationID string)
	Stop()
	SimulationID() string
	Status() telemetry.Status
	Snapshot() []telemetry.Series
}

// RelayStatus reports whether the MQTT relay is connected.
type RelayStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Simulator config.SimulatorConfig
	Polling   config.PollingConfig
	Telemetry config.TelemetryConfig
	Logger    *logging.Logger

	Sim           Simulator
	Monitor       Monitor
	Notifications *notify.Center

	// Hub is shared with the telemetry monitor so samples reach browsers.
	// If nil the server creates its own.
	Hub *Hub

	// Relay is optional; nil when MQTT is disabled.
	Relay RelayStatus

	Version string
}

// deviceList is one fetch of a building's devices.
type deviceList struct {
	BuildingID string
	Devices    []building.Device
}

// Server is the dashboard HTTP server.
//
// It manages the HTTP listener, routes, middleware, the WebSocket hub and
// the building and device pollers. Create with New, start with Start.
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	simCfg       config.SimulatorConfig
	windowSize   int
	logger       *logging.Logger
	sim          Simulator
	monitor      Monitor
	notes        *notify.Center
	relay        RelayStatus
	version      string
	startTime    time.Time
	server       *http.Server
	hub          *Hub
	externalHub  bool
	cancel       context.CancelFunc
	srvCtx       context.Context
	buildings    *poller.Poller[[]building.Building]
	devices      *poller.Poller[deviceList]
	selectionMu  sync.RWMutex
	selectedID   string
	pollersGroup sync.WaitGroup
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sim == nil {
		return nil, fmt.Errorf("simulator client is required")
	}
	if deps.Monitor == nil {
		return nil, fmt.Errorf("telemetry monitor is required")
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		simCfg:     deps.Simulator,
		windowSize: deps.Telemetry.WindowSize,
		logger:     deps.Logger,
		sim:        deps.Sim,
		monitor:    deps.Monitor,
		notes:      deps.Notifications,
		relay:      deps.Relay,
		version:    deps.Version,
		startTime:  time.Now(),
		srvCtx:     context.Background(),
	}
	if s.notes == nil {
		s.notes = notify.NewCenter()
	}
	if s.windowSize < 1 {
		s.windowSize = telemetry.DefaultWindowSize
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	} else {
		s.hub = NewHub(s.wsCfg, s.logger)
	}

	s.buildings = poller.New("buildings", intervalOr(deps.Polling.BuildingsInterval, 30*time.Second), s.sim.ListBuildings)
	s.buildings.SetLogger(s.logger)
	s.buildings.OnUpdate(func(list []building.Building) {
		s.hub.Broadcast(EventBuildingsUpdated, map[string]any{"buildings": list})
	})

	s.devices = poller.New("devices", intervalOr(deps.Polling.DevicesInterval, 5*time.Second), s.fetchSelectedDevices)
	s.devices.SetLogger(s.logger)
	s.devices.OnUpdate(func(list deviceList) {
		s.hub.Broadcast(EventDevicesUpdated, newDevicesView(list, time.Now(), nil))
	})

	s.notes.Subscribe(func(n notify.Notification) {
		s.hub.Broadcast(EventNotification, n)
	})

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub (unless shared), both pollers and the HTTP
// listener in background goroutines. Stop everything with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	s.srvCtx = srvCtx

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.pollersGroup.Add(1)
	go func() {
		defer s.pollersGroup.Done()
		if err := poller.RunAll(srvCtx, s.buildings, s.devices); err != nil {
			s.logger.Error("pollers stopped", "error", err)
		}
	}()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It stops the pollers and the live telemetry session, then waits up to
// 10 seconds for in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.pollersGroup.Wait()
	s.monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// selectBuilding makes id the building whose devices are polled.
// Changing the selection drops the previous building's device list.
func (s *Server) selectBuilding(id string) {
	s.selectionMu.Lock()
	changed := s.selectedID != id
	s.selectedID = id
	s.selectionMu.Unlock()

	if changed {
		s.devices.Reset()
	}
}

func (s *Server) selectedBuilding() string {
	s.selectionMu.RLock()
	defer s.selectionMu.RUnlock()
	return s.selectedID
}

func (s *Server) fetchSelectedDevices(ctx context.Context) (deviceList, error) {
	id := s.selectedBuilding()
	if id == "" {
		return deviceList{}, poller.ErrSkip
	}
	devices, err := s.sim.ListDevices(ctx, id)
	if err != nil {
		return deviceList{}, err
	}
	return deviceList{BuildingID: id, Devices: devices}, nil
}

func intervalOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
