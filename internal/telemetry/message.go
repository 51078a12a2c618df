package telemetry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/nerrad567/simdash/internal/building"
)

// Field names carried in telemetry data records.
const (
	FieldTemperature  = "temperature"
	FieldPressure     = "pressure"
	FieldPosition     = "position"
	FieldFrequency    = "frequency"
	FieldCurrentPower = "current_power"
	FieldPower        = "power"
	FieldValue        = "value"
)

// fieldTable maps a device type to the data field holding its scalar.
// Types not listed read FieldValue.
var fieldTable = map[building.DeviceType]string{
	building.DeviceTypeTemperatureSensor:   FieldTemperature,
	building.DeviceTypePressureSensor:      FieldPressure,
	building.DeviceTypeValveController:     FieldPosition,
	building.DeviceTypeDamperController:    FieldPosition,
	building.DeviceTypeFrequencyController: FieldFrequency,
	building.DeviceTypePowerMeter:          FieldCurrentPower,
}

// fallbackFields lists the field consulted when the primary one is absent.
var fallbackFields = map[building.DeviceType]string{
	building.DeviceTypePowerMeter: FieldPower,
}

// Message is one telemetry sample as delivered on the simulator socket.
//
// Timestamp is kept raw: the simulator has sent both strings and epoch
// numbers, and samples are stamped with the receipt time regardless.
type Message struct {
	DeviceID  string              `json:"device_id"`
	Type      building.DeviceType `json:"type"`
	Data      map[string]any      `json:"data"`
	Timestamp json.RawMessage     `json:"timestamp,omitempty"`
}

// Decode parses a raw socket payload into a Message.
//
// Returns ErrMalformedMessage if the payload is not a JSON object or is
// missing device_id, type or data. An empty data object is accepted here;
// it fails later in Value.
func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if msg.DeviceID == "" || msg.Type == "" || msg.Data == nil {
		return Message{}, fmt.Errorf("%w: missing device_id, type or data", ErrMalformedMessage)
	}
	return msg, nil
}

// FieldFor returns the data field holding the scalar for a device type.
// Every type maps to exactly one field; unrecognised types map to "value".
func FieldFor(t building.DeviceType) string {
	if f, ok := fieldTable[t]; ok {
		return f
	}
	return FieldValue
}

// Value extracts the scalar reading for the message's device type.
//
// The primary field is used when present and non-null, otherwise the type's
// fallback field if it has one. The result must be a finite JSON number.
func (m Message) Value() (float64, error) {
	field := FieldFor(m.Type)
	raw, ok := m.Data[field]
	if !ok || raw == nil {
		if fb, hasFallback := fallbackFields[m.Type]; hasFallback {
			field = fb
			raw = m.Data[fb]
		}
	}

	v, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s field %q is %v", ErrInvalidValue, m.Type, field, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s field %q is not finite", ErrInvalidValue, m.Type, field)
	}
	return v, nil
}
