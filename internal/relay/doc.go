// Package relay republishes live telemetry to MQTT.
//
// Each accepted sample is published, with the device's updated window
// statistics, to simdash/telemetry/{simulation}/{device}. Stream state
// changes go to the retained simdash/simulation/{simulation}/state topic.
// The relay is a live fan-out only: nothing is stored or replayed, and a
// publish that fails while the broker is away is dropped.
package relay
