package components

import "github.com/yohamta/donburi"

// NetInterpData stores interpolation state for smooth movement of replicated
// entities between host updates.
type NetInterpData struct {
	TargetX, TargetY float64
	VelX, VelY       float64 // Velocity at the last update
	Initialized      bool
}

var NetInterp = donburi.NewComponentType[NetInterpData]()
