package systems

import (
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

type TransformSystem struct {
	entities *EntityManager
}

func NewTransformSystem(entities *EntityManager) *TransformSystem {
	return &TransformSystem{entities: entities}
}

// Transform returns the transform of id, or nil if id has none.
func (s *TransformSystem) Transform(id netconfig.EntityID) *components.TransformData {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Transform) {
		return nil
	}
	return components.Transform.Get(entry)
}

// SetTransformState marks whether the host simulates id locally or applies
// a remote client's input to it.
func (s *TransformSystem) SetTransformState(id netconfig.EntityID, state netconfig.TransformState) {
	if t := s.Transform(id); t != nil {
		t.State = state
	}
}

// SetPosition moves id, keeping any physics body in step.
func (s *TransformSystem) SetPosition(id netconfig.EntityID, pos math.Vec2) {
	entry, ok := s.entities.Entry(id)
	if !ok {
		return
	}
	if entry.HasComponent(components.Transform) {
		components.Transform.Get(entry).Position = pos
	}
	if entry.HasComponent(components.Object) {
		if obj := components.Object.Get(entry); obj.Object != nil {
			obj.X = pos.X
			obj.Y = pos.Y
			obj.Update()
		}
	}
}
