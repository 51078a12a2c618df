package scene

import "github.com/nerrad567/simdash/internal/building"

// BoxKind identifies what a Box renders.
type BoxKind string

// BoxKind constants.
const (
	KindFloor  BoxKind = "floor"
	KindRoom   BoxKind = "room"
	KindDevice BoxKind = "device"
)

// Box colours and sizes.
const (
	floorColor          = "#cccccc"
	roomColor           = "#f0f0f0"
	roomOpacity         = 0.5
	deviceActiveColor   = "#4caf50"
	deviceInactiveColor = "#f44336"
)

var (
	floorSize  = Size{W: 20, H: 0.2, D: 20}
	roomSize   = Size{W: 5, H: 2.8, D: 5}
	deviceSize = Size{W: 0.5, H: 0.5, D: 0.5}
)

// Size is a box's extent along each axis.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
	D float64 `json:"d"`
}

// Box is one mesh of the static scene, positioned in absolute coordinates.
type Box struct {
	ID      string   `json:"id"`
	Kind    BoxKind  `json:"kind"`
	Center  Position `json:"center"`
	Size    Size     `json:"size"`
	Color   string   `json:"color"`
	Opacity float64  `json:"opacity"`
	Label   string   `json:"label,omitempty"`
}

// Flatten resolves the nested relative positions into a flat list of boxes,
// one per floor, room and device, in depth-first order.
func Flatten(b Building3D) []Box {
	var boxes []Box
	for _, f := range b.Floors {
		boxes = append(boxes, Box{
			ID:      f.ID,
			Kind:    KindFloor,
			Center:  f.Position,
			Size:    floorSize,
			Color:   floorColor,
			Opacity: 1,
		})
		for _, r := range f.Rooms {
			roomCenter := f.Position.Add(r.Position)
			boxes = append(boxes, Box{
				ID:      r.ID,
				Kind:    KindRoom,
				Center:  roomCenter,
				Size:    roomSize,
				Color:   roomColor,
				Opacity: roomOpacity,
			})
			for _, d := range r.Devices {
				boxes = append(boxes, Box{
					ID:      d.ID,
					Kind:    KindDevice,
					Center:  roomCenter.Add(d.Position),
					Size:    deviceSize,
					Color:   deviceColor(d.Status),
					Opacity: 1,
					Label:   string(d.Type),
				})
			}
		}
	}
	return boxes
}

func deviceColor(s building.Status) string {
	if s == building.StatusActive {
		return deviceActiveColor
	}
	return deviceInactiveColor
}
