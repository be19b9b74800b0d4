package player

import (
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/systems"
	"github.com/yohamta/donburi/features/math"
)

// EntityManager creates and releases entities by template.
type EntityManager interface {
	CreateEntity(template string) (netconfig.EntityID, error)
	ReleaseEntity(id netconfig.EntityID)
	Valid(id netconfig.EntityID) bool
}

type TransformSystem interface {
	Transform(id netconfig.EntityID) *components.TransformData
	SetTransformState(id netconfig.EntityID, state netconfig.TransformState)
	SetPosition(id netconfig.EntityID, pos math.Vec2)
}

type DamageSystem interface {
	SetDamageCallback(id netconfig.EntityID, kind systems.DamageKind, fn systems.DamageCallback) uint32
	RemoveDamageCallback(handle uint32)
	ApplyDamage(id netconfig.EntityID, amount int, who netconfig.EntityID) bool
	SetHealth(id netconfig.EntityID, health int)
	Heal(id netconfig.EntityID, amount int)
	Health(id netconfig.EntityID) int
}

type CameraSystem interface {
	Follow(id netconfig.EntityID, offset math.Vec2)
	Unfollow()
}

type LogicSystem interface {
	AddLogic(id netconfig.EntityID, l systems.Logic)
	RemoveLogic(id netconfig.EntityID)
}

type BodySystem interface {
	AddBody(id netconfig.EntityID, x, y float64)
	Body(id netconfig.EntityID) *components.PhysicsData
}

// Systems bundles the collaborators the player daemons and logic work
// through.
type Systems struct {
	Entities   EntityManager
	Transforms TransformSystem
	Damage     DamageSystem
	Camera     CameraSystem
	Logic      LogicSystem
	Bodies     BodySystem
}

// NewSystems wires the concrete collaborators of one simulation.
func NewSystems(entities *systems.EntityManager, transforms *systems.TransformSystem, damage *systems.DamageSystem,
	camera *systems.CameraSystem, logic *systems.LogicSystem, physics *systems.PhysicsSystem) Systems {
	return Systems{
		Entities:   entities,
		Transforms: transforms,
		Damage:     damage,
		Camera:     camera,
		Logic:      logic,
		Bodies:     physics,
	}
}
