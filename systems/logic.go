package systems

import (
	"time"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// UpdateContext describes the step being simulated.
type UpdateContext struct {
	Step      uint64
	DeltaMS   float64
	Timestamp time.Time
}

// Logic is per-entity behaviour run once per step.
type Logic interface {
	Update(ctx UpdateContext)
}

// Releaser is implemented by logic that holds resources (bus subscriptions,
// callbacks) to give back when its entity goes away.
type Releaser interface {
	Release()
}

// LogicSystem runs attached logic in attachment order.
type LogicSystem struct {
	entities *EntityManager
	logic    map[netconfig.EntityID]Logic
	order    []netconfig.EntityID
}

func NewLogicSystem(entities *EntityManager) *LogicSystem {
	s := &LogicSystem{
		entities: entities,
		logic:    make(map[netconfig.EntityID]Logic),
	}
	entities.OnRelease(s.RemoveLogic)
	return s
}

// AddLogic attaches l to id, replacing (and releasing) any previous logic.
func (s *LogicSystem) AddLogic(id netconfig.EntityID, l Logic) {
	if _, ok := s.logic[id]; ok {
		s.RemoveLogic(id)
	}
	s.logic[id] = l
	s.order = append(s.order, id)
}

// RemoveLogic detaches and releases the logic of id.
func (s *LogicSystem) RemoveLogic(id netconfig.EntityID) {
	l, ok := s.logic[id]
	if !ok {
		return
	}
	delete(s.logic, id)
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if r, ok := l.(Releaser); ok {
		r.Release()
	}
}

func (s *LogicSystem) Logic(id netconfig.EntityID) (Logic, bool) {
	l, ok := s.logic[id]
	return l, ok
}

func (s *LogicSystem) Len() int {
	return len(s.logic)
}

// Update runs every attached logic whose entity is still live.
func (s *LogicSystem) Update(ctx UpdateContext) {
	ids := append([]netconfig.EntityID(nil), s.order...)
	for _, id := range ids {
		l, ok := s.logic[id]
		if !ok || !s.entities.Valid(id) {
			continue
		}
		l.Update(ctx)
	}
}
