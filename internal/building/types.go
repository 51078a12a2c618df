package building

// Category classifies a building.
type Category string

// Category constants.
const (
	CategoryOffice      Category = "office"
	CategoryResidential Category = "residential"
	CategoryCommercial  Category = "commercial"
)

// AllCategories returns all valid building categories.
func AllCategories() []Category {
	return []Category{CategoryOffice, CategoryResidential, CategoryCommercial}
}

// Status is the operational status of a device.
type Status string

// Status constants.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// DeviceType identifies the kind of simulated device.
// Unknown values reported by the simulator are kept verbatim.
type DeviceType string //nolint:revive // building.DeviceType reads better than building.Type at call sites

// Controller and sensor types that make up the default room loadout.
const (
	DeviceTypeTemperatureSensor   DeviceType = "temperature_sensor"
	DeviceTypePressureSensor      DeviceType = "pressure_sensor"
	DeviceTypeValveController     DeviceType = "valve_controller"
	DeviceTypeDamperController    DeviceType = "damper_controller"
	DeviceTypeFrequencyController DeviceType = "frequency_controller"
	DeviceTypePowerMeter          DeviceType = "power_meter"
)

// Monitor-only types. The simulator reports them but rooms are never
// created with them by default.
const (
	DeviceTypeHumiditySensor  DeviceType = "humidity_sensor"
	DeviceTypeMotionSensor    DeviceType = "motion_sensor"
	DeviceTypeLightController DeviceType = "light_controller"
	DeviceTypeHVACController  DeviceType = "hvac_controller"
)

// AllDeviceTypes returns every device type known to simdash.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeTemperatureSensor, DeviceTypePressureSensor,
		DeviceTypeValveController, DeviceTypeDamperController,
		DeviceTypeFrequencyController, DeviceTypePowerMeter,
		DeviceTypeHumiditySensor, DeviceTypeMotionSensor,
		DeviceTypeLightController, DeviceTypeHVACController,
	}
}

// Reading is the last reading reported for a device. Which keys are present
// depends on the device type.
//
// Examples:
//   - temperature_sensor: {"temperature": 21.5, "humidity": 40}
//   - motion_sensor: {"motion_detected": true}
//   - power_meter: {"current_power": 3.2, "power_consumption": 120.4}
type Reading map[string]any

// Float returns the named reading field as a float64 when it is numeric.
func (r Reading) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Device is a single simulated device inside a room.
type Device struct {
	ID          string     `json:"id"`
	Type        DeviceType `json:"type"`
	Status      Status     `json:"status"`
	LastReading Reading    `json:"lastReading,omitempty"`
}

// Room is a numbered room holding devices.
type Room struct {
	Number  int      `json:"number"`
	Devices []Device `json:"devices"`
}

// Floor is a numbered floor holding rooms.
type Floor struct {
	Number int    `json:"number"`
	Rooms  []Room `json:"rooms"`
}

// Building is a simulated building as returned by the simulator API.
// The client never edits a building; it is only created or deleted.
type Building struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         Category `json:"type"`
	Floors       []Floor  `json:"floors"`
	DevicesCount int      `json:"devices_count"`
}

// DeviceCount counts the devices across every floor and room.
// It may differ from DevicesCount while the simulator is still provisioning.
func (b *Building) DeviceCount() int {
	n := 0
	for _, f := range b.Floors {
		for _, r := range f.Rooms {
			n += len(r.Devices)
		}
	}
	return n
}

// DeviceCreate is a device entry in a creation payload.
type DeviceCreate struct {
	Type   DeviceType `json:"type"`
	Status Status     `json:"status"`
}

// RoomCreate is a room entry in a creation payload.
type RoomCreate struct {
	Number  int            `json:"number"`
	Devices []DeviceCreate `json:"devices"`
}

// FloorCreate is a floor entry in a creation payload.
type FloorCreate struct {
	Number int          `json:"number"`
	Rooms  []RoomCreate `json:"rooms"`
}

// CreateRequest is the nested payload sent to POST /buildings.
type CreateRequest struct {
	Name   string        `json:"name"`
	Type   Category      `json:"type"`
	Floors []FloorCreate `json:"floors"`
}

// RoomCount returns the total number of rooms in the request.
func (r *CreateRequest) RoomCount() int {
	n := 0
	for _, f := range r.Floors {
		n += len(f.Rooms)
	}
	return n
}

// SimulationData is the status block the simulator reports for a run.
type SimulationData struct {
	Status             string  `json:"status"`
	ActiveDevicesCount int     `json:"active_devices_count"`
	EventsPerSecond    float64 `json:"events_per_second"`
}
