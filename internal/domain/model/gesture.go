package model

// GestureSample is the pointer state at the moment a drag is released.
// Velocities are in screen units per tick, displacements in screen units.
type GestureSample struct {
	VX float64
	VY float64
	DX float64
	DY float64
}
