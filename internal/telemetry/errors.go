package telemetry

import "errors"

// Domain errors for the telemetry package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMalformedMessage is returned when a stream payload is not JSON or
	// lacks device_id, type or data. The message is dropped.
	ErrMalformedMessage = errors.New("telemetry: malformed message")

	// ErrInvalidValue is returned when the field mapped to the device type is
	// missing, not a number, or not finite. The sample is dropped.
	ErrInvalidValue = errors.New("telemetry: invalid value")

	// ErrDialFailed is returned when the telemetry socket cannot be opened.
	ErrDialFailed = errors.New("telemetry: dial failed")

	// ErrConnectionLost is returned when an open telemetry socket fails.
	ErrConnectionLost = errors.New("telemetry: connection lost")
)
