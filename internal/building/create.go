package building

import (
	"fmt"
	"strings"
)

// Creation bounds.
const (
	MinFloors        = 1
	MaxFloors        = 50
	MinRoomsPerFloor = 1
	MaxRoomsPerFloor = 20
)

// defaultLoadout is the device set every new room is provisioned with.
var defaultLoadout = [...]DeviceType{
	DeviceTypeTemperatureSensor,
	DeviceTypePressureSensor,
	DeviceTypeValveController,
	DeviceTypeDamperController,
	DeviceTypeFrequencyController,
	DeviceTypePowerMeter,
}

// Pre-computed set for category validation.
var validCategories map[Category]struct{}

func init() {
	validCategories = make(map[Category]struct{}, len(AllCategories()))
	for _, c := range AllCategories() {
		validCategories[c] = struct{}{}
	}
}

// Form is the structured input collected for a new building.
type Form struct {
	Name          string   `json:"name"`
	Type          Category `json:"type"`
	Floors        int      `json:"floors"`
	RoomsPerFloor int      `json:"rooms_per_floor"`
}

// DefaultForm returns the form prefilled with one office floor of four rooms.
func DefaultForm() Form {
	return Form{
		Type:          CategoryOffice,
		Floors:        1,
		RoomsPerFloor: 4,
	}
}

// DefaultDevices returns the fixed device loadout for a room. Every room gets
// the same six controllers and sensors regardless of its number, all active.
func DefaultDevices(_ int) []DeviceCreate {
	devices := make([]DeviceCreate, len(defaultLoadout))
	for i, t := range defaultLoadout {
		devices[i] = DeviceCreate{Type: t, Status: StatusActive}
	}
	return devices
}

// Validate checks the form against the creation bounds.
// An empty type is accepted and treated as office.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrInvalidName
	}
	if f.Type != "" {
		if _, ok := validCategories[f.Type]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidCategory, f.Type)
		}
	}
	if f.Floors < MinFloors || f.Floors > MaxFloors {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidFloors, f.Floors, MinFloors, MaxFloors)
	}
	if f.RoomsPerFloor < MinRoomsPerFloor || f.RoomsPerFloor > MaxRoomsPerFloor {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidRooms, f.RoomsPerFloor, MinRoomsPerFloor, MaxRoomsPerFloor)
	}
	return nil
}

// NewCreateRequest synthesises the nested creation payload from a form.
//
// Floors are numbered 0..Floors-1 and rooms 0..RoomsPerFloor-1 within each
// floor. Every room receives DefaultDevices.
//
// Returns:
//   - CreateRequest: payload ready for POST /buildings
//   - error: a wrapped ErrInvalid* if the form fails validation
func NewCreateRequest(f Form) (CreateRequest, error) {
	if err := f.Validate(); err != nil {
		return CreateRequest{}, err
	}

	category := f.Type
	if category == "" {
		category = CategoryOffice
	}

	floors := make([]FloorCreate, f.Floors)
	for fi := range floors {
		rooms := make([]RoomCreate, f.RoomsPerFloor)
		for ri := range rooms {
			rooms[ri] = RoomCreate{Number: ri, Devices: DefaultDevices(ri)}
		}
		floors[fi] = FloorCreate{Number: fi, Rooms: rooms}
	}

	return CreateRequest{
		Name:   strings.TrimSpace(f.Name),
		Type:   category,
		Floors: floors,
	}, nil
}
