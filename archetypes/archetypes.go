package archetypes

import (
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/tags"
	"github.com/yohamta/donburi"
)

// Template names accepted by the entity manager.
const (
	PlayerTemplate  = "player"
	ReplicaTemplate = "replica"
	PickupTemplate  = "pickup"
	CameraTemplate  = "camera"
)

var (
	Player = newArchetype(
		PlayerTemplate,
		tags.Player,
		components.NetID,
		components.Transform,
		components.Health,
		components.Physics,
		components.Object,
		components.Player,
	)
	Replica = newArchetype(
		ReplicaTemplate,
		tags.Replica,
		components.NetID,
		components.Transform,
		components.NetInterp,
	)
	Pickup = newArchetype(
		PickupTemplate,
		tags.Pickup,
		components.Pickup,
		components.Object,
	)
	Camera = newArchetype(
		CameraTemplate,
		components.Camera,
	)
)

var byName = map[string]*Archetype{}

type Archetype struct {
	name       string
	components []donburi.IComponentType
}

func newArchetype(name string, cs ...donburi.IComponentType) *Archetype {
	a := &Archetype{
		name:       name,
		components: cs,
	}
	byName[name] = a
	return a
}

// ByName returns the archetype registered under template.
func ByName(template string) (*Archetype, bool) {
	a, ok := byName[template]
	return a, ok
}

func (a *Archetype) Name() string {
	return a.name
}

func (a *Archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	all := append(append([]donburi.IComponentType(nil), a.components...), cs...)
	return world.Entry(world.Create(all...))
}
