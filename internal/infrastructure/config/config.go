package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fallback simulator endpoints used when neither the config file nor the
// environment supplies one.
const (
	DefaultSimulatorAPIURL = "https://iot-building-simulator-1.onrender.com"
	DefaultSimulatorWSURL  = "ws://iot-building-simulator-1.onrender.com"
)

// Config is the root configuration structure for simdash.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Polling   PollingConfig   `yaml:"polling"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SimulatorConfig points at the remote building simulator backend.
type SimulatorConfig struct {
	// APIURL is the base URL of the simulator REST API (http or https).
	APIURL string `yaml:"api_url"`

	// WSURL is the base URL of the simulator telemetry sockets (ws or wss).
	WSURL string `yaml:"ws_url"`

	// EventsPerSecond is sent with every simulation start request.
	// Default: 1.0
	EventsPerSecond float64 `yaml:"events_per_second"`

	// DefaultDurationHours is used when a start request omits the duration.
	// Default: 24
	DefaultDurationHours int `yaml:"default_duration_hours"`
}

// APIConfig contains settings for the dashboard HTTP server.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// PanelDir serves the dashboard from disk instead of the embedded copy.
	// Empty in production.
	PanelDir string `yaml:"panel_dir"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains settings for the browser-facing WebSocket hub.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// PollingConfig contains refresh intervals for remote lists.
type PollingConfig struct {
	BuildingsInterval time.Duration `yaml:"buildings_interval"`
	DevicesInterval   time.Duration `yaml:"devices_interval"`
}

// TelemetryConfig contains live aggregation settings.
type TelemetryConfig struct {
	// WindowSize is the number of most recent samples kept per device.
	// Default: 50
	WindowSize int `yaml:"window_size"`
}

// MQTTConfig contains settings for the optional MQTT relay.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped if the file does not exist
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SIMDASH_SECTION_KEY
// For example: SIMDASH_API_URL, SIMDASH_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults plus environment are a complete configuration.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			APIURL:               DefaultSimulatorAPIURL,
			WSURL:                DefaultSimulatorWSURL,
			EventsPerSecond:      1.0,
			DefaultDurationHours: 24,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Polling: PollingConfig{
			BuildingsInterval: 30 * time.Second,
			DevicesInterval:   5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			WindowSize: 50,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "simdash",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SIMDASH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Simulator endpoints. An API URL that is not absolute http(s) is ignored.
	if v := os.Getenv("SIMDASH_API_URL"); strings.HasPrefix(v, "http") {
		cfg.Simulator.APIURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("SIMDASH_WS_URL"); v != "" {
		if ws, ok := normaliseWSURL(v); ok {
			cfg.Simulator.WSURL = ws
		}
	}

	// API
	if v := os.Getenv("SIMDASH_LISTEN_HOST"); v != "" {
		cfg.API.Host = v
	}

	// MQTT
	if v := os.Getenv("SIMDASH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SIMDASH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SIMDASH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// normaliseWSURL accepts ws(s):// URLs as-is and maps http(s):// to ws(s)://.
func normaliseWSURL(raw string) (string, bool) {
	raw = strings.TrimRight(raw, "/")
	switch {
	case strings.HasPrefix(raw, "ws://"), strings.HasPrefix(raw, "wss://"):
		return raw, true
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://"), true
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://"), true
	default:
		return "", false
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of all validation failures, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if !strings.HasPrefix(c.Simulator.APIURL, "http://") && !strings.HasPrefix(c.Simulator.APIURL, "https://") {
		errs = append(errs, "simulator.api_url must be an http or https URL")
	}
	if _, ok := normaliseWSURL(c.Simulator.WSURL); !ok {
		errs = append(errs, "simulator.ws_url must be a ws, wss, http or https URL")
	}
	if c.Simulator.EventsPerSecond <= 0 {
		errs = append(errs, "simulator.events_per_second must be positive")
	}
	if c.Simulator.DefaultDurationHours < 1 {
		errs = append(errs, "simulator.default_duration_hours must be at least 1")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Polling.BuildingsInterval <= 0 {
		errs = append(errs, "polling.buildings_interval must be positive")
	}
	if c.Polling.DevicesInterval <= 0 {
		errs = append(errs, "polling.devices_interval must be positive")
	}

	if c.Telemetry.WindowSize < 1 {
		errs = append(errs, "telemetry.window_size must be at least 1")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SimulatorWSURL returns the WebSocket base URL in ws(s) form.
func (c *Config) SimulatorWSURL() string {
	ws, ok := normaliseWSURL(c.Simulator.WSURL)
	if !ok {
		return DefaultSimulatorWSURL
	}
	return ws
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
