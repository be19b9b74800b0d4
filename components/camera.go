package components

import (
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

type CameraData struct {
	Position math.Vec2
	Target   netconfig.EntityID // InvalidID when not following
	Offset   math.Vec2
	From     math.Vec2    // Position when the current follow started
	Blend    float32      // 0 at From, 1 locked on target
	Ease     *gween.Tween // Drives Blend after a Follow
}

var Camera = donburi.NewComponentType[CameraData]()
