package scene

import (
	"fmt"

	"github.com/nerrad567/simdash/internal/building"
)

// Grid layout constants. Rooms sit on a 3-wide grid of 6-unit cells on each
// floor slab; devices sit on a 2-wide grid of 2-unit cells inside each room.
const (
	roomsPerRow   = 3
	roomSpacing   = 6.0
	roomOffset    = 6.0
	roomElevation = 1.4

	devicesPerRow   = 2
	deviceSpacing   = 2.0
	deviceOffset    = 1.0
	deviceElevation = 0.5

	floorHeight = 3.0
)

// Position is a point in scene space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of two positions.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Device3D is a device with a position relative to its room.
type Device3D struct {
	ID       string              `json:"id"`
	Type     building.DeviceType `json:"type"`
	Status   building.Status     `json:"status"`
	Position Position            `json:"position"`
}

// Room3D is a room with a position relative to its floor.
type Room3D struct {
	ID       string     `json:"id"`
	Number   int        `json:"number"`
	Devices  []Device3D `json:"devices"`
	Position Position   `json:"position"`
}

// Floor3D is a floor with a position relative to the building origin.
type Floor3D struct {
	ID       string   `json:"id"`
	Number   int      `json:"number"`
	Rooms    []Room3D `json:"rooms"`
	Position Position `json:"position"`
}

// Building3D is the render-only copy of a building.
type Building3D struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Type   building.Category `json:"type"`
	Floors []Floor3D         `json:"floors"`
}

// gridPosition lays index out row-major on a grid of the given width.
func gridPosition(index, perRow int, spacing, offset, elevation float64) Position {
	return Position{
		X: float64(index%perRow)*spacing - offset,
		Y: elevation,
		Z: float64(index/perRow)*spacing - offset,
	}
}

// ToDevice3D converts a device at the given index within its room.
func ToDevice3D(d building.Device, index int) Device3D {
	return Device3D{
		ID:       d.ID,
		Type:     d.Type,
		Status:   d.Status,
		Position: gridPosition(index, devicesPerRow, deviceSpacing, deviceOffset, deviceElevation),
	}
}

// ToRoom3D converts a room at the given index within its floor. The floor
// number is part of the room id so ids stay unique across floors.
func ToRoom3D(floorNumber int, r building.Room, index int) Room3D {
	devices := make([]Device3D, len(r.Devices))
	for i, d := range r.Devices {
		devices[i] = ToDevice3D(d, i)
	}
	return Room3D{
		ID:       fmt.Sprintf("room-%d-%d", floorNumber, r.Number),
		Number:   r.Number,
		Devices:  devices,
		Position: gridPosition(index, roomsPerRow, roomSpacing, roomOffset, roomElevation),
	}
}

// ToFloor3D converts a floor. Floors stack vertically by their number.
func ToFloor3D(f building.Floor) Floor3D {
	rooms := make([]Room3D, len(f.Rooms))
	for i, r := range f.Rooms {
		rooms[i] = ToRoom3D(f.Number, r, i)
	}
	return Floor3D{
		ID:       fmt.Sprintf("floor-%d", f.Number),
		Number:   f.Number,
		Rooms:    rooms,
		Position: Position{Y: float64(f.Number) * floorHeight},
	}
}

// ToBuilding3D converts a building and everything in it.
func ToBuilding3D(b building.Building) Building3D {
	floors := make([]Floor3D, len(b.Floors))
	for i, f := range b.Floors {
		floors[i] = ToFloor3D(f)
	}
	return Building3D{
		ID:     b.ID,
		Name:   b.Name,
		Type:   b.Type,
		Floors: floors,
	}
}
