package building

import "errors"

// Domain errors for building creation.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, building.ErrInvalidFloors) {
//	    // ask for a smaller building
//	}
var (
	// ErrInvalidName is returned when the building name is empty.
	ErrInvalidName = errors.New("building: name is required")

	// ErrInvalidCategory is returned when the category is not office, residential or commercial.
	ErrInvalidCategory = errors.New("building: invalid type")

	// ErrInvalidFloors is returned when the floor count is outside 1..50.
	ErrInvalidFloors = errors.New("building: invalid floor count")

	// ErrInvalidRooms is returned when the rooms-per-floor count is outside 1..20.
	ErrInvalidRooms = errors.New("building: invalid rooms per floor")
)
