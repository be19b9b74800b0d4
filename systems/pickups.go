package systems

import (
	"github.com/automoto/doomerang-netplay/archetypes"
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/tags"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// PickupSystem places pickup items in the physics space and posts a
// PickupEvent when a player touches an active one. Taken pickups come back
// after config.Pickup.RespawnSteps.
type PickupSystem struct {
	entities *EntityManager
	physics  *PhysicsSystem
	bus      *events.Bus
	items    []*donburi.Entry
}

func NewPickupSystem(entities *EntityManager, physics *PhysicsSystem, bus *events.Bus) *PickupSystem {
	return &PickupSystem{entities: entities, physics: physics, bus: bus}
}

// AddPickup places an item of kind at (x, y). A zero amount takes the
// configured default for kind.
func (s *PickupSystem) AddPickup(kind netconfig.PickupType, x, y float64, amount int32) {
	if amount == 0 {
		amount = defaultPickupAmount(kind)
	}
	entry := archetypes.Pickup.Spawn(s.entities.World())
	size := config.Pickup.Size
	obj := resolv.NewObject(x, y, size, size, tags.ResolvPickup)
	obj.SetShape(resolv.NewRectangle(0, 0, size, size))
	obj.Data = entry
	s.physics.Space().Add(obj)

	components.Object.SetValue(entry, components.ObjectData{Object: obj})
	components.Pickup.SetValue(entry, components.PickupData{Type: kind, Amount: amount, Active: true})
	s.items = append(s.items, entry)
}

func defaultPickupAmount(kind netconfig.PickupType) int32 {
	switch kind {
	case netconfig.PickupAmmo:
		return config.Pickup.AmmoAmount
	case netconfig.PickupHealth:
		return config.Pickup.HealthAmount
	case netconfig.PickupScore:
		return config.Pickup.ScoreAmount
	}
	return 0
}

// Active returns how many pickups can currently be taken.
func (s *PickupSystem) Active() int {
	n := 0
	for _, e := range s.items {
		if components.Pickup.Get(e).Active {
			n++
		}
	}
	return n
}

func (s *PickupSystem) Update() {
	for _, e := range s.items {
		p := components.Pickup.Get(e)
		if p.Active {
			continue
		}
		p.RespawnIn--
		if p.RespawnIn <= 0 {
			p.Active = true
			s.physics.Space().Add(components.Object.Get(e).Object)
		}
	}

	for _, id := range s.entities.IDs() {
		entry, _ := s.entities.Entry(id)
		if !entry.HasComponent(tags.Player) {
			continue
		}
		obj := s.physics.Object(id)
		if obj == nil {
			continue
		}
		check := obj.Check(0, 0, tags.ResolvPickup)
		if check == nil {
			continue
		}
		for _, o := range check.ObjectsByTags(tags.ResolvPickup) {
			item, ok := o.Data.(*donburi.Entry)
			if !ok {
				continue
			}
			p := components.Pickup.Get(item)
			if !p.Active {
				continue
			}
			p.Active = false
			p.RespawnIn = config.Pickup.RespawnSteps
			s.physics.Space().Remove(o)
			s.bus.Post(messages.PickupEvent{EntityID: id, Type: p.Type, Amount: p.Amount})
		}
	}
}
