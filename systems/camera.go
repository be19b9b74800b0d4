package systems

import (
	"github.com/automoto/doomerang-netplay/archetypes"
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

// CameraSystem follows one entity. Switching targets eases the camera from
// where it was to the new target instead of cutting.
type CameraSystem struct {
	transforms *TransformSystem
	entry      *donburi.Entry
}

func NewCameraSystem(world donburi.World, transforms *TransformSystem) *CameraSystem {
	entry := archetypes.Camera.Spawn(world)
	components.Camera.SetValue(entry, components.CameraData{Target: netconfig.InvalidID, Blend: 1})
	return &CameraSystem{transforms: transforms, entry: entry}
}

func (s *CameraSystem) data() *components.CameraData {
	return components.Camera.Get(s.entry)
}

// Follow starts tracking id, offset from its position.
func (s *CameraSystem) Follow(id netconfig.EntityID, offset math.Vec2) {
	cam := s.data()
	cam.Target = id
	cam.Offset = offset
	cam.From = cam.Position
	cam.Blend = 0
	cam.Ease = gween.New(0, 1, config.Camera.FollowDuration, ease.OutQuad)
}

// Unfollow stops tracking; the camera stays where it is.
func (s *CameraSystem) Unfollow() {
	cam := s.data()
	cam.Target = netconfig.InvalidID
	cam.Ease = nil
	cam.Blend = 1
}

// Target returns the followed entity, if any.
func (s *CameraSystem) Target() (netconfig.EntityID, bool) {
	cam := s.data()
	return cam.Target, cam.Target.Valid()
}

func (s *CameraSystem) Position() math.Vec2 {
	return s.data().Position
}

// Update advances the follow easing by dt seconds.
func (s *CameraSystem) Update(dt float32) {
	cam := s.data()
	if !cam.Target.Valid() {
		return
	}
	t := s.transforms.Transform(cam.Target)
	if t == nil {
		return
	}

	if cam.Ease != nil {
		blend, done := cam.Ease.Update(dt)
		cam.Blend = blend
		if done {
			cam.Blend = 1
			cam.Ease = nil
		}
	}

	targetX := t.Position.X + cam.Offset.X
	targetY := t.Position.Y + cam.Offset.Y
	b := float64(cam.Blend)
	cam.Position.X = cam.From.X + (targetX-cam.From.X)*b
	cam.Position.Y = cam.From.Y + (targetY-cam.From.Y)*b
}
