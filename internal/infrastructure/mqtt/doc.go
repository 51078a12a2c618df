// Package mqtt provides MQTT publishing for the simdash relay.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topics
//
//	simdash/telemetry/{simulation}/{device}   per-device stats, not retained
//	simdash/simulation/{simulation}/state     stream state, retained
//	simdash/system/status                     online/offline, retained, LWT
//
// Ids are used as single topic levels; "/", "+" and "#" are replaced by "_".
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.SimulationState("sim-42")
//	err = client.PublishJSON(topic, status, true)
package mqtt
