package components

import (
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

type TransformData struct {
	Position math.Vec2
	Rotation float64
	State    netconfig.TransformState
}

var Transform = donburi.NewComponentType[TransformData]()
