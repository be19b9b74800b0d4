package systems

import (
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// DamageKind selects when a damage callback fires.
type DamageKind int

const (
	Damaged DamageKind = iota
	Destroyed
)

// DamageCallback receives the entity, the damage dealt (zero for Destroyed)
// and the entity that dealt the last blow.
type DamageCallback func(id netconfig.EntityID, amount int, who netconfig.EntityID)

type damageCallback struct {
	id   netconfig.EntityID
	kind DamageKind
	fn   DamageCallback
}

// DamageSystem applies damage to entities with a Health component and
// destroys them once health reaches zero.
type DamageSystem struct {
	entities  *EntityManager
	callbacks map[uint32]damageCallback
	order     []uint32
	nextID    uint32
	destroyed map[netconfig.EntityID]bool
}

func NewDamageSystem(entities *EntityManager) *DamageSystem {
	s := &DamageSystem{
		entities:  entities,
		callbacks: make(map[uint32]damageCallback),
		destroyed: make(map[netconfig.EntityID]bool),
	}
	entities.OnRelease(s.forget)
	return s
}

// SetDamageCallback registers fn for id and returns a handle for
// RemoveDamageCallback.
func (s *DamageSystem) SetDamageCallback(id netconfig.EntityID, kind DamageKind, fn DamageCallback) uint32 {
	s.nextID++
	s.callbacks[s.nextID] = damageCallback{id: id, kind: kind, fn: fn}
	s.order = append(s.order, s.nextID)
	return s.nextID
}

func (s *DamageSystem) RemoveDamageCallback(handle uint32) {
	delete(s.callbacks, handle)
}

// ApplyDamage lowers the health of id by amount. Entities already at zero
// health are ignored. It reports whether damage was applied.
func (s *DamageSystem) ApplyDamage(id netconfig.EntityID, amount int, who netconfig.EntityID) bool {
	if amount <= 0 || !s.entities.Valid(id) {
		return false
	}
	entry, _ := s.entities.Entry(id)
	if !entry.HasComponent(components.Health) {
		return false
	}
	health := components.Health.Get(entry)
	if health.Current <= 0 {
		return false
	}

	health.Current -= amount
	if health.Current < 0 {
		health.Current = 0
	}
	health.LastAttacker = who
	s.fire(id, Damaged, amount, who)
	return true
}

// Heal restores up to amount health, capped at the maximum.
func (s *DamageSystem) Heal(id netconfig.EntityID, amount int) {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Health) {
		return
	}
	health := components.Health.Get(entry)
	if health.Current <= 0 {
		return
	}
	health.Current = min(health.Current+amount, health.Max)
}

// SetHealth fills id to health and makes it the maximum.
func (s *DamageSystem) SetHealth(id netconfig.EntityID, health int) {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Health) {
		return
	}
	components.Health.SetValue(entry, components.HealthData{Current: health, Max: health, LastAttacker: netconfig.InvalidID})
	delete(s.destroyed, id)
}

// Health returns the current health of id, or zero.
func (s *DamageSystem) Health(id netconfig.EntityID) int {
	entry, ok := s.entities.Entry(id)
	if !ok || !entry.HasComponent(components.Health) {
		return 0
	}
	return components.Health.Get(entry).Current
}

// Update destroys every entity whose health reached zero. Destroyed
// callbacks fire once per entity before it is released.
func (s *DamageSystem) Update() {
	var dead []netconfig.EntityID
	for _, id := range s.entities.IDs() {
		entry, _ := s.entities.Entry(id)
		if !entry.HasComponent(components.Health) {
			continue
		}
		if components.Health.Get(entry).Current <= 0 && !s.destroyed[id] {
			dead = append(dead, id)
		}
	}

	for _, id := range dead {
		s.destroyed[id] = true
		entry, _ := s.entities.Entry(id)
		who := components.Health.Get(entry).LastAttacker
		s.fire(id, Destroyed, 0, who)
		s.entities.ReleaseEntity(id)
	}
}

func (s *DamageSystem) fire(id netconfig.EntityID, kind DamageKind, amount int, who netconfig.EntityID) {
	live := s.order[:0]
	var due []DamageCallback
	for _, h := range s.order {
		cb, ok := s.callbacks[h]
		if !ok {
			continue
		}
		live = append(live, h)
		if cb.id == id && cb.kind == kind {
			due = append(due, cb.fn)
		}
	}
	s.order = live
	for _, fn := range due {
		fn(id, amount, who)
	}
}

func (s *DamageSystem) forget(id netconfig.EntityID) {
	for h, cb := range s.callbacks {
		if cb.id == id {
			delete(s.callbacks, h)
		}
	}
	delete(s.destroyed, id)
}
