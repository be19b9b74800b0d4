package systems

import (
	"sort"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// Controllers holds the latest snapshot of every attached local controller.
// Pointers returned by Get stay valid until Detach, so logic can bind to
// them once.
type Controllers struct {
	states map[int]*netconfig.ControllerState
}

func NewControllers() *Controllers {
	return &Controllers{states: make(map[int]*netconfig.ControllerState)}
}

// Attach registers controller id and returns its snapshot.
func (c *Controllers) Attach(id int) *netconfig.ControllerState {
	if s, ok := c.states[id]; ok {
		return s
	}
	s := &netconfig.ControllerState{ID: id}
	c.states[id] = s
	return s
}

func (c *Controllers) Detach(id int) {
	delete(c.states, id)
}

// Get returns the snapshot of id, or nil if it is not attached.
func (c *Controllers) Get(id int) *netconfig.ControllerState {
	return c.states[id]
}

// Set overwrites the snapshot of id in place. The ID field is preserved.
func (c *Controllers) Set(id int, state netconfig.ControllerState) {
	s, ok := c.states[id]
	if !ok {
		return
	}
	state.ID = id
	*s = state
}

// IDs returns the attached controller ids in ascending order.
func (c *Controllers) IDs() []int {
	out := make([]int, 0, len(c.states))
	for id := range c.states {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
