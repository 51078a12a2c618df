package building

import (
	"regexp"
	"sort"
	"strconv"
)

// floorTokenRegex extracts the floor number the simulator embeds in device
// ids, e.g. "b12_floor_3_room_1_temperature_sensor".
var floorTokenRegex = regexp.MustCompile(`floor_(\d+)`)

// FloorDevices is a flat device list for one floor.
type FloorDevices struct {
	FloorNumber int      `json:"floor_number"`
	Devices     []Device `json:"devices"`
}

// FloorOf returns the floor number encoded in a device id, or 0 when the id
// carries no floor token.
func FloorOf(deviceID string) int {
	m := floorTokenRegex.FindStringSubmatch(deviceID)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// GroupByFloor groups a flat device list by floor, floors ascending.
// Device order within a floor follows the input order.
func GroupByFloor(devices []Device) []FloorDevices {
	byFloor := make(map[int][]Device)
	for _, d := range devices {
		n := FloorOf(d.ID)
		byFloor[n] = append(byFloor[n], d)
	}

	out := make([]FloorDevices, 0, len(byFloor))
	for n, ds := range byFloor {
		out = append(out, FloorDevices{FloorNumber: n, Devices: ds})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FloorNumber < out[j].FloorNumber })
	return out
}

// CountActive returns how many devices report StatusActive.
func CountActive(devices []Device) int {
	n := 0
	for _, d := range devices {
		if d.Status == StatusActive {
			n++
		}
	}
	return n
}
