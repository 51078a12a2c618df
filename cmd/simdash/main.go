// simdash - building simulator dashboard
//
// This is the main entry point for the simdash application. It serves the
// dashboard (REST API, WebSocket events and the embedded panel) in front of
// a remote building simulator, and can follow a single simulation's live
// telemetry in the terminal.
//
// Usage:
//
//	simdash [serve]                  run the dashboard server
//	simdash watch <simulation-id>    live telemetry table and charts
//	simdash version                  print build information
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/simdash/internal/api"
	"github.com/nerrad567/simdash/internal/console"
	"github.com/nerrad567/simdash/internal/infrastructure/config"
	"github.com/nerrad567/simdash/internal/infrastructure/logging"
	"github.com/nerrad567/simdash/internal/infrastructure/mqtt"
	"github.com/nerrad567/simdash/internal/notify"
	"github.com/nerrad567/simdash/internal/relay"
	"github.com/nerrad567/simdash/internal/simclient"
	"github.com/nerrad567/simdash/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/simdash.yaml"

// errUsage is returned for a malformed command line.
var errUsage = errors.New("usage: simdash [serve | watch <simulation-id> | version]")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches the subcommand named by args, separated from main for
// testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command line arguments without the program name
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return serve(ctx)
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "watch":
		if len(args) != 2 || args[1] == "" {
			return errUsage
		}
		return watch(ctx, args[1], os.Stdout)
	case "version":
		fmt.Printf("simdash %s (commit %s, built %s)\n", version, commit, date)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

// serve runs the dashboard server until ctx is cancelled.
func serve(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting simdash",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	sim := simclient.New(simclient.Config{
		APIURL: cfg.Simulator.APIURL,
		WSURL:  cfg.SimulatorWSURL(),
	})
	sim.SetLogger(log)
	log.Info("simulator configured",
		"api_url", cfg.Simulator.APIURL,
		"ws_url", cfg.SimulatorWSURL(),
	)

	// Connect to MQTT broker (optional)
	var rel *relay.Relay
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		rel = relay.New(mqttClient)
		rel.SetLogger(log)
	} else {
		log.Info("MQTT relay disabled")
	}

	notes := notify.NewCenter()
	hub := api.NewHub(cfg.WebSocket, log)

	var monitor *telemetry.Monitor
	monitor = telemetry.NewMonitor(telemetry.MonitorOptions{
		StreamURL:  sim.SimulationStreamURL,
		WindowSize: cfg.Telemetry.WindowSize,
		Logger:     log,
		OnSample: func(simID string, s telemetry.Sample) {
			hub.Broadcast(api.EventTelemetrySample, api.NewSampleEvent(simID, cfg.Telemetry.WindowSize, s))
			if rel != nil {
				rel.PublishSample(simID, s)
			}
		},
		OnState: func(st telemetry.Status) {
			hub.Broadcast(api.EventSimulationState, api.NewSimulationView(st, len(monitor.Snapshot()), cfg.Simulator.EventsPerSecond))
			if rel != nil {
				rel.PublishState(st)
			}
			if st.State == telemetry.StateError {
				notes.Error("Telemetry stream failed", st.Error)
			}
		},
	})

	srv, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Simulator:     cfg.Simulator,
		Polling:       cfg.Polling,
		Telemetry:     cfg.Telemetry,
		Logger:        log,
		Sim:           sim,
		Monitor:       monitor,
		Notifications: notes,
		Hub:           hub,
		Relay:         relayStatus(rel),
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if err := srv.Start(gctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, cleaning up")
		return srv.Close()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("simdash stopped")
	return nil
}

// relayStatus keeps a nil *relay.Relay from becoming a non-nil interface.
func relayStatus(rel *relay.Relay) api.RelayStatus {
	if rel == nil {
		return nil
	}
	return rel
}

// watch follows one simulation's telemetry in the terminal until ctx is
// cancelled or the stream ends.
func watch(ctx context.Context, simulationID string, out io.Writer) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Log lines would tear the redrawn screen.
	log := logging.NewWithWriter(cfg.Logging, version, io.Discard)

	sim := simclient.New(simclient.Config{
		APIURL: cfg.Simulator.APIURL,
		WSURL:  cfg.SimulatorWSURL(),
	})
	sim.SetLogger(log)

	monitor := telemetry.NewMonitor(telemetry.MonitorOptions{
		StreamURL:  sim.SimulationStreamURL,
		WindowSize: cfg.Telemetry.WindowSize,
		Logger:     log,
	})
	monitor.Watch(ctx, simulationID)
	defer monitor.Stop()

	view := console.New(console.Options{})
	if err := view.Run(ctx, monitor); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	st := monitor.Status()
	if st.State == telemetry.StateError {
		return fmt.Errorf("telemetry stream for %s: %s", simulationID, st.Error)
	}
	fmt.Fprintf(out, "\nsimulation %s: %s\n", simulationID, st.State)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SIMDASH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SIMDASH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
