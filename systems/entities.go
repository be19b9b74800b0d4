package systems

import (
	"fmt"
	"sort"

	"github.com/automoto/doomerang-netplay/archetypes"
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi"
)

// EntityManager maps host-minted ids to donburi entities. Releases are
// deferred until FlushReleased so that systems iterating the world during a
// step never observe a half-removed entity.
type EntityManager struct {
	world   donburi.World
	ids     map[netconfig.EntityID]donburi.Entity
	nextID  netconfig.EntityID
	pending []netconfig.EntityID
	marked  map[netconfig.EntityID]bool
	hooks   []func(netconfig.EntityID)
}

func NewEntityManager(world donburi.World) *EntityManager {
	if world == nil {
		world = donburi.NewWorld()
	}
	return &EntityManager{
		world:  world,
		ids:    make(map[netconfig.EntityID]donburi.Entity),
		nextID: 1,
		marked: make(map[netconfig.EntityID]bool),
	}
}

func (m *EntityManager) World() donburi.World {
	return m.world
}

// CreateEntity spawns template under a fresh id.
func (m *EntityManager) CreateEntity(template string) (netconfig.EntityID, error) {
	for {
		id := m.nextID
		m.nextID++
		if m.nextID == netconfig.InvalidID {
			m.nextID = 1
		}
		if _, taken := m.ids[id]; taken {
			continue
		}
		if err := m.CreateEntityWithID(template, id); err != nil {
			return netconfig.InvalidID, err
		}
		return id, nil
	}
}

// CreateEntityWithID spawns template under an id minted elsewhere. Peers use
// it to mirror host entities.
func (m *EntityManager) CreateEntityWithID(template string, id netconfig.EntityID) error {
	if !id.Valid() {
		return fmt.Errorf("create %s: invalid id", template)
	}
	if _, taken := m.ids[id]; taken {
		return fmt.Errorf("create %s: id %d already in use", template, id)
	}
	arch, ok := archetypes.ByName(template)
	if !ok {
		return fmt.Errorf("create: unknown template %q", template)
	}

	entry := arch.Spawn(m.world)
	if !entry.HasComponent(components.NetID) {
		entry.AddComponent(components.NetID)
	}
	components.NetID.SetValue(entry, components.NetIDData{ID: id})
	m.ids[id] = entry.Entity()
	return nil
}

// ReleaseEntity schedules id for removal at the end of the step. Releasing
// an unknown or already scheduled id is a no-op.
func (m *EntityManager) ReleaseEntity(id netconfig.EntityID) {
	if _, ok := m.ids[id]; !ok || m.marked[id] {
		return
	}
	m.marked[id] = true
	m.pending = append(m.pending, id)
}

// FlushReleased runs the release hooks and removes every scheduled entity.
// Hooks may schedule further releases; those are flushed in the same call.
func (m *EntityManager) FlushReleased() int {
	n := 0
	for len(m.pending) > 0 {
		id := m.pending[0]
		m.pending = m.pending[1:]
		for _, hook := range m.hooks {
			hook(id)
		}
		if e, ok := m.ids[id]; ok {
			if m.world.Valid(e) {
				m.world.Remove(e)
			}
			delete(m.ids, id)
		}
		delete(m.marked, id)
		n++
	}
	return n
}

// OnRelease registers fn to run for every entity just before it is removed.
func (m *EntityManager) OnRelease(fn func(netconfig.EntityID)) {
	m.hooks = append(m.hooks, fn)
}

// Valid reports whether id refers to a live entity not scheduled for release.
func (m *EntityManager) Valid(id netconfig.EntityID) bool {
	e, ok := m.ids[id]
	return ok && !m.marked[id] && m.world.Valid(e)
}

// Entry returns the donburi entry of id, including entities scheduled for
// release.
func (m *EntityManager) Entry(id netconfig.EntityID) (*donburi.Entry, bool) {
	e, ok := m.ids[id]
	if !ok || !m.world.Valid(e) {
		return nil, false
	}
	return m.world.Entry(e), true
}

// IDs returns the live ids in ascending order.
func (m *EntityManager) IDs() []netconfig.EntityID {
	out := make([]netconfig.EntityID, 0, len(m.ids))
	for id := range m.ids {
		if !m.marked[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *EntityManager) Count() int {
	return len(m.ids) - len(m.marked)
}
