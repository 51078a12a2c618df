// Package scene converts the building hierarchy into a 3D-positioned model
// for rendering.
//
// Positions are synthesised from each entity's index within its parent, so
// the conversion is pure and deterministic and may be recomputed or memoised
// freely. Nothing here is persisted or sent back to the simulator.
package scene
