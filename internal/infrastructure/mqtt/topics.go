package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every simdash topic.
const TopicPrefix = "simdash"

// Topics provides builders for simdash MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Telemetry("sim-42", "b1_floor_0_room_1_power_meter")
//	// Returns: "simdash/telemetry/sim-42/b1_floor_0_room_1_power_meter"
type Topics struct{}

// Telemetry returns the topic carrying one device's updated statistics.
//
// Example: simdash/telemetry/sim-42/dev-1
func (Topics) Telemetry(simulationID, deviceID string) string {
	return fmt.Sprintf("%s/telemetry/%s/%s", TopicPrefix, segment(simulationID), segment(deviceID))
}

// SimulationState returns the retained topic for a simulation's stream state.
//
// Example: simdash/simulation/sim-42/state
func (Topics) SimulationState(simulationID string) string {
	return fmt.Sprintf("%s/simulation/%s/state", TopicPrefix, segment(simulationID))
}

// SystemStatus returns the topic for online/offline status (LWT).
//
// Example: simdash/system/status
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// AllTelemetry returns a wildcard for every device of a simulation.
//
// Example: simdash/telemetry/sim-42/+
func (Topics) AllTelemetry(simulationID string) string {
	return fmt.Sprintf("%s/telemetry/%s/+", TopicPrefix, segment(simulationID))
}

// AllTopics returns a wildcard for every simdash topic.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// segmentReplacer strips characters that would change the topic structure.
var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// segment makes an id safe to use as a single topic level.
func segment(id string) string {
	if id == "" {
		return "_"
	}
	return segmentReplacer.Replace(id)
}
