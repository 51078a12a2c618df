// Package telemetry consumes the simulator's per-simulation websocket and
// keeps a rolling window of readings per device.
//
// Each message carries a device ID, a device type and a data record. The
// scalar plotted for a device is read from the field its type maps to
// (temperature sensors read "temperature", power meters read
// "current_power" falling back to "power", and so on; anything unknown
// reads "value"). Malformed messages and non-numeric values are dropped
// without touching other devices.
//
// Windows hold the most recent 50 points by default. Stats (last, min, max,
// avg) are recomputed over the whole window after every accepted sample.
//
// A Monitor owns at most one Stream at a time. Switching simulations tears
// the old stream and its aggregator down, and a stream that errors is not
// redialled automatically.
package telemetry
