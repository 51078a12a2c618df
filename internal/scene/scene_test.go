package scene

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/nerrad567/simdash/internal/building"
)

// testBuilding builds floors × rooms with six devices per room, device ids
// following the simulator's naming.
func testBuilding(floors, rooms int) building.Building {
	b := building.Building{ID: "b1", Name: "HQ", Type: building.CategoryOffice}
	for f := 0; f < floors; f++ {
		floor := building.Floor{Number: f}
		for r := 0; r < rooms; r++ {
			room := building.Room{Number: r}
			for i, dc := range building.DefaultDevices(r) {
				status := dc.Status
				if i == 5 {
					status = building.StatusInactive
				}
				room.Devices = append(room.Devices, building.Device{
					ID:     fmt.Sprintf("b1_floor_%d_room_%d_%s", f, r, dc.Type),
					Type:   dc.Type,
					Status: status,
				})
			}
			floor.Rooms = append(floor.Rooms, room)
		}
		b.Floors = append(b.Floors, floor)
	}
	return b
}

func TestToDevice3D_Grid(t *testing.T) {
	tests := []struct {
		index int
		want  Position
	}{
		{0, Position{X: -1, Y: 0.5, Z: -1}},
		{1, Position{X: 1, Y: 0.5, Z: -1}},
		{2, Position{X: -1, Y: 0.5, Z: 1}},
		{5, Position{X: 1, Y: 0.5, Z: 3}},
	}

	for _, tt := range tests {
		got := ToDevice3D(building.Device{ID: "d"}, tt.index)
		if got.Position != tt.want {
			t.Errorf("ToDevice3D(index %d).Position = %+v, want %+v", tt.index, got.Position, tt.want)
		}
	}
}

func TestToRoom3D_Grid(t *testing.T) {
	tests := []struct {
		index int
		want  Position
	}{
		{0, Position{X: -6, Y: 1.4, Z: -6}},
		{2, Position{X: 6, Y: 1.4, Z: -6}},
		{3, Position{X: -6, Y: 1.4, Z: 0}},
	}

	for _, tt := range tests {
		got := ToRoom3D(0, building.Room{Number: tt.index}, tt.index)
		if got.Position != tt.want {
			t.Errorf("ToRoom3D(index %d).Position = %+v, want %+v", tt.index, got.Position, tt.want)
		}
	}
}

func TestToBuilding3D_CopiesFields(t *testing.T) {
	b := testBuilding(2, 2)
	b3 := ToBuilding3D(b)

	if b3.ID != b.ID || b3.Name != b.Name || b3.Type != b.Type {
		t.Errorf("Building3D header = %+v, want id/name/type of %+v", b3, b)
	}
	if len(b3.Floors) != 2 {
		t.Fatalf("len(Floors) = %d, want 2", len(b3.Floors))
	}
	if b3.Floors[1].Position.Y != 3 {
		t.Errorf("floor 1 Y = %v, want 3", b3.Floors[1].Position.Y)
	}
	dev := b3.Floors[1].Rooms[1].Devices[5]
	src := b.Floors[1].Rooms[1].Devices[5]
	if dev.ID != src.ID || dev.Type != src.Type || dev.Status != src.Status {
		t.Errorf("device = %+v, want fields of %+v", dev, src)
	}
}

func TestToBuilding3D_Deterministic(t *testing.T) {
	b := testBuilding(3, 4)
	if !reflect.DeepEqual(ToBuilding3D(b), ToBuilding3D(b)) {
		t.Error("ToBuilding3D must be deterministic")
	}
}

func TestToBuilding3D_UniqueIDs(t *testing.T) {
	b3 := ToBuilding3D(testBuilding(3, 5))

	seen := make(map[string]bool)
	for _, f := range b3.Floors {
		for _, r := range f.Rooms {
			if seen[r.ID] {
				t.Errorf("duplicate room id %q", r.ID)
			}
			seen[r.ID] = true
		}
	}
}

func TestFlatten_UniquePositions(t *testing.T) {
	boxes := Flatten(ToBuilding3D(testBuilding(3, 5)))

	// 3 floors + 15 rooms + 90 devices
	if len(boxes) != 108 {
		t.Fatalf("len(boxes) = %d, want 108", len(boxes))
	}

	seen := make(map[BoxKind]map[Position]string)
	for _, box := range boxes {
		if seen[box.Kind] == nil {
			seen[box.Kind] = make(map[Position]string)
		}
		if other, ok := seen[box.Kind][box.Center]; ok {
			t.Errorf("%s %q shares position %+v with %q", box.Kind, box.ID, box.Center, other)
		}
		seen[box.Kind][box.Center] = box.ID
	}
}

func TestFlatten_AbsolutePositionsAndColours(t *testing.T) {
	boxes := Flatten(ToBuilding3D(testBuilding(2, 1)))

	// Floor 1, room 0, device 0: (0,3,0) + (-6,1.4,-6) + (-1,0.5,-1)
	var found bool
	for _, box := range boxes {
		if box.ID != "b1_floor_1_room_0_temperature_sensor" {
			continue
		}
		found = true
		want := Position{X: -7, Y: 4.9, Z: -7}
		if box.Center != want {
			t.Errorf("device center = %+v, want %+v", box.Center, want)
		}
		if box.Color != deviceActiveColor {
			t.Errorf("active device colour = %q, want %q", box.Color, deviceActiveColor)
		}
	}
	if !found {
		t.Fatal("device box not found")
	}

	for _, box := range boxes {
		if box.Kind == KindDevice && box.Label == string(building.DeviceTypePowerMeter) && box.Color != deviceInactiveColor {
			t.Errorf("inactive device %q colour = %q, want %q", box.ID, box.Color, deviceInactiveColor)
		}
	}
}
