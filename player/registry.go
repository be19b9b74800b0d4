package player

import (
	"sort"
	"sync"

	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// Slot indexes the two local players.
type Slot int

const (
	SlotOne Slot = iota
	SlotTwo
	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotOne:
		return "player one"
	case SlotTwo:
		return "player two"
	}
	return "unknown"
}

// RemotePlayer is the host's record of one connected peer.
type RemotePlayer struct {
	Address      netconfig.Address
	Info         PlayerInfo
	Controller   netconfig.ControllerState
	LastSequence uint32
	RespawnIn    int // Steps until a dead remote player is spawned again

	hasInput bool
}

// ScoreEntry is one row of the scoreboard.
type ScoreEntry struct {
	Name     string             `json:"name"`
	EntityID netconfig.EntityID `json:"entity_id"`
	Score    int32              `json:"score"`
	Active   bool               `json:"active"`
	State    string             `json:"state"`
}

// Registry is the table of local slots and remote records. Pointers it hands
// out stay valid until the record is removed; writes to them go through the
// registry lock when other goroutines may be reading.
type Registry struct {
	mu      sync.RWMutex
	slots   [slotCount]PlayerInfo
	remotes map[netconfig.Address]*RemotePlayer
}

func NewRegistry() *Registry {
	r := &Registry{remotes: make(map[netconfig.Address]*RemotePlayer)}
	for i := range r.slots {
		r.slots[i] = newPlayerInfo()
	}
	return r
}

// mutate runs fn with the registry locked for writing.
func (r *Registry) mutate(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// Slot returns the PlayerInfo of a local slot.
func (r *Registry) Slot(s Slot) *PlayerInfo {
	return &r.slots[s]
}

func (r *Registry) SlotOne() *PlayerInfo {
	return r.Slot(SlotOne)
}

func (r *Registry) SlotTwo() *PlayerInfo {
	return r.Slot(SlotTwo)
}

// Connect returns the record of addr, creating it if needed. created reports
// whether this call inserted it.
func (r *Registry) Connect(addr netconfig.Address) (rec *RemotePlayer, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.remotes[addr]; ok {
		return rec, false
	}
	rec = &RemotePlayer{Address: addr, Info: newPlayerInfo()}
	r.remotes[addr] = rec
	return rec, true
}

func (r *Registry) Remote(addr netconfig.Address) (*RemotePlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.remotes[addr]
	return rec, ok
}

// Remove deletes the record of addr. Removing an absent address is a no-op.
func (r *Registry) Remove(addr netconfig.Address) (*RemotePlayer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.remotes[addr]
	if ok {
		delete(r.remotes, addr)
	}
	return rec, ok
}

// AcceptInput stores msg as the latest controller snapshot of its sender if
// its sequence is newer than the last accepted one.
func (r *Registry) AcceptInput(msg messages.RemoteInputMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.remotes[msg.Sender]
	if !ok {
		return false
	}
	if rec.hasInput && int32(msg.Sequence-rec.LastSequence) <= 0 {
		return false
	}
	rec.Controller = msg.Controller
	rec.LastSequence = msg.Sequence
	rec.hasInput = true
	return true
}

// ApplyScore adds delta to whichever player owns id. Unmatched ids are
// ignored.
func (r *Registry) ApplyScore(id netconfig.EntityID, delta int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := r.ownerOf(id)
	if info == nil {
		return false
	}
	info.Score += delta
	return true
}

// OwnerOf returns the PlayerInfo bound to id, or nil.
func (r *Registry) OwnerOf(id netconfig.EntityID) *PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownerOf(id)
}

func (r *Registry) ownerOf(id netconfig.EntityID) *PlayerInfo {
	if !id.Valid() {
		return nil
	}
	for i := range r.slots {
		if r.slots[i].EntityID == id {
			return &r.slots[i]
		}
	}
	for _, rec := range r.remotes {
		if rec.Info.EntityID == id {
			return &rec.Info
		}
	}
	return nil
}

// PlayerIDs returns the entity ids of every active player: slot one, slot
// two, then remote players ordered by address.
func (r *Registry) PlayerIDs() []netconfig.EntityID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []netconfig.EntityID
	for i := range r.slots {
		if r.slots[i].Active && r.slots[i].EntityID.Valid() {
			ids = append(ids, r.slots[i].EntityID)
		}
	}
	for _, rec := range r.sortedRemotes() {
		if rec.Info.Active && rec.Info.EntityID.Valid() {
			ids = append(ids, rec.Info.EntityID)
		}
	}
	return ids
}

// Remotes returns the remote records ordered by address.
func (r *Registry) Remotes() []*RemotePlayer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedRemotes()
}

func (r *Registry) sortedRemotes() []*RemotePlayer {
	out := make([]*RemotePlayer, 0, len(r.remotes))
	for _, rec := range r.remotes {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Addresses returns the connected peer addresses in order.
func (r *Registry) Addresses() []netconfig.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]netconfig.Address, 0, len(r.remotes))
	for addr := range r.remotes {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RemoteCount returns the number of connected peers.
func (r *Registry) RemoteCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.remotes)
}

// Scoreboard copies the score of every slot in use and of every remote
// player.
func (r *Registry) Scoreboard() []ScoreEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ScoreEntry
	for i := range r.slots {
		info := &r.slots[i]
		if *info == newPlayerInfo() {
			continue
		}
		out = append(out, scoreEntry(Slot(i).String(), info))
	}
	for _, rec := range r.sortedRemotes() {
		out = append(out, scoreEntry(string(rec.Address), &rec.Info))
	}
	return out
}

func scoreEntry(name string, info *PlayerInfo) ScoreEntry {
	return ScoreEntry{
		Name:     name,
		EntityID: info.EntityID,
		Score:    info.Score,
		Active:   info.Active,
		State:    info.State.String(),
	}
}

// Clear resets both slots and drops every remote record.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		r.slots[i].clear()
	}
	clear(r.remotes)
}
