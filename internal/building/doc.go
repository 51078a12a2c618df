// Package building defines the simulator's building hierarchy and the
// payloads used to create buildings.
//
// A Building contains Floors, which contain Rooms, which contain Devices.
// The simulator owns all of it; simdash only lists, creates and deletes
// buildings. NewCreateRequest turns the short form (name, type, floors,
// rooms per floor) into the fully nested payload, provisioning every room
// with the same six-device loadout.
//
// Everything here is plain data and pure functions, safe to share between
// goroutines as long as callers do not mutate shared values.
package building
