package components

import (
	"github.com/yohamta/donburi"
)

// Vector represents a 2D vector.
type Vector struct {
	X, Y float64
}

// PhysicsData is a top-down body. Input is the force requested by the
// entity's logic for the current step, each axis in [-1, 1].
type PhysicsData struct {
	SpeedX       float64
	SpeedY       float64
	Input        Vector
	Acceleration float64
	Friction     float64
	MaxSpeed     float64
}

var Physics = donburi.NewComponentType[PhysicsData]()
