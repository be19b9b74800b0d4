package systems

import (
	"math"

	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/tags"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// PhysicsSystem moves player bodies through a resolv space, stopping them at
// level solids.
type PhysicsSystem struct {
	entities *EntityManager
	space    *resolv.Space
}

// NewPhysicsSystem uses space for collision. A nil space gets an empty one.
func NewPhysicsSystem(entities *EntityManager, space *resolv.Space) *PhysicsSystem {
	if space == nil {
		space = resolv.NewSpace(4096, 4096, 16, 16)
	}
	s := &PhysicsSystem{entities: entities, space: space}
	entities.OnRelease(s.removeBody)
	return s
}

func (s *PhysicsSystem) Space() *resolv.Space {
	return s.space
}

// AddBody gives id a collision box at (x, y) and the player's movement
// tuning.
func (s *PhysicsSystem) AddBody(id netconfig.EntityID, x, y float64) {
	entry, ok := s.entities.Entry(id)
	if !ok {
		return
	}
	s.removeBody(id)

	w, h := config.Player.CollisionWidth, config.Player.CollisionHeight
	obj := resolv.NewObject(x, y, w, h, tags.ResolvPlayer)
	obj.SetShape(resolv.NewRectangle(0, 0, w, h))
	obj.Data = entry
	s.space.Add(obj)

	if !entry.HasComponent(components.Object) {
		entry.AddComponent(components.Object)
	}
	components.Object.SetValue(entry, components.ObjectData{Object: obj})
	if !entry.HasComponent(components.Physics) {
		entry.AddComponent(components.Physics)
	}
	components.Physics.SetValue(entry, components.PhysicsData{
		Acceleration: config.Player.Acceleration,
		Friction:     config.Player.Friction,
		MaxSpeed:     config.Player.MaxSpeed,
	})
	if entry.HasComponent(components.Transform) {
		t := components.Transform.Get(entry)
		t.Position.X, t.Position.Y = x, y
	}
}

// Body returns the physics state of id, or nil.
func (s *PhysicsSystem) Body(id netconfig.EntityID) *components.PhysicsData {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Physics) {
		return nil
	}
	return components.Physics.Get(entry)
}

// Object returns the collision object of id, or nil.
func (s *PhysicsSystem) Object(id netconfig.EntityID) *resolv.Object {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Object) {
		return nil
	}
	return components.Object.Get(entry).Object
}

// Update integrates one step for every body and writes the result to the
// entity's transform.
func (s *PhysicsSystem) Update() {
	components.Physics.Each(s.entities.World(), func(e *donburi.Entry) {
		if !e.HasComponent(components.Object) {
			return
		}
		obj := components.Object.Get(e).Object
		if obj == nil {
			return
		}
		body := components.Physics.Get(e)
		s.step(obj, body)

		if e.HasComponent(components.Transform) {
			t := components.Transform.Get(e)
			t.Position.X, t.Position.Y = obj.X, obj.Y
		}
	})
}

func (s *PhysicsSystem) step(obj *resolv.Object, body *components.PhysicsData) {
	body.SpeedX = approach(body.SpeedX, body.Input.X, body)
	body.SpeedY = approach(body.SpeedY, body.Input.Y, body)

	// --- Resolve horizontal collision ---
	dx := body.SpeedX
	if dx != 0 {
		if check := obj.Check(dx, 0, tags.ResolvSolid); check != nil {
			if solids := check.ObjectsByTags(tags.ResolvSolid); len(solids) > 0 {
				dx = check.ContactWithObject(solids[0]).X()
				body.SpeedX = 0
			}
		}
		obj.X += dx
	}

	// --- Resolve vertical collision ---
	dy := body.SpeedY
	if dy != 0 {
		if check := obj.Check(0, dy, tags.ResolvSolid); check != nil {
			if solids := check.ObjectsByTags(tags.ResolvSolid); len(solids) > 0 {
				dy = check.ContactWithObject(solids[0]).Y()
				body.SpeedY = 0
			}
		}
		obj.Y += dy
	}

	obj.Update()
}

// approach accelerates speed along input, applies friction when there is no
// input on the axis and clamps to the body's max speed.
func approach(speed, input float64, body *components.PhysicsData) float64 {
	if input != 0 {
		speed += input * body.Acceleration
	} else if speed > body.Friction {
		speed -= body.Friction
	} else if speed < -body.Friction {
		speed += body.Friction
	} else {
		speed = 0
	}
	return math.Max(-body.MaxSpeed, math.Min(body.MaxSpeed, speed))
}

func (s *PhysicsSystem) removeBody(id netconfig.EntityID) {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Object) {
		return
	}
	obj := components.Object.Get(entry)
	if obj.Object != nil {
		s.space.Remove(obj.Object)
		obj.Object = nil
	}
}
