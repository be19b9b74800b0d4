package systems

import (
	"sort"

	"github.com/automoto/doomerang-netplay/archetypes"
	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/rs/zerolog"
)

// ReplicaSystem mirrors host players on a peer. Each PlayerStateMessage
// creates or updates a replica entity under the host's id; Update moves
// replicas smoothly towards their last reported position.
type ReplicaSystem struct {
	entities *EntityManager
	bus      *events.Bus
	states   map[netconfig.EntityID]messages.PlayerStateMessage
	subs     []events.Subscription
	log      zerolog.Logger
}

func NewReplicaSystem(entities *EntityManager, bus *events.Bus) *ReplicaSystem {
	s := &ReplicaSystem{
		entities: entities,
		bus:      bus,
		states:   make(map[netconfig.EntityID]messages.PlayerStateMessage),
		log:      logging.For("replica"),
	}
	s.subs = append(s.subs,
		events.Subscribe(bus, s.onPlayerState),
		events.Subscribe(bus, s.onPlayerDespawned),
	)
	return s
}

func (s *ReplicaSystem) onPlayerState(msg messages.PlayerStateMessage) events.Result {
	if !msg.EntityID.Valid() {
		return events.Handled
	}
	if !s.entities.Valid(msg.EntityID) {
		if err := s.entities.CreateEntityWithID(archetypes.ReplicaTemplate, msg.EntityID); err != nil {
			s.log.Warn().Err(err).Uint32("entity", uint32(msg.EntityID)).Msg("cannot create replica")
			return events.Handled
		}
	}
	entry, _ := s.entities.Entry(msg.EntityID)
	interp := components.NetInterp.Get(entry)
	interp.TargetX, interp.TargetY = msg.Position.X, msg.Position.Y
	interp.VelX, interp.VelY = msg.Velocity.X, msg.Velocity.Y

	t := components.Transform.Get(entry)
	t.State = netconfig.TransformClient
	if !interp.Initialized {
		t.Position = msg.Position
		interp.Initialized = true
	}

	s.states[msg.EntityID] = msg
	return events.Continue
}

func (s *ReplicaSystem) onPlayerDespawned(msg messages.PlayerDespawnedMessage) events.Result {
	delete(s.states, msg.EntityID)
	s.entities.ReleaseEntity(msg.EntityID)
	return events.Continue
}

// Update interpolates every replica towards its target.
func (s *ReplicaSystem) Update() {
	k := config.Net.ReplicaLerp
	for id := range s.states {
		entry, ok := s.entities.Entry(id)
		if !ok {
			continue
		}
		interp := components.NetInterp.Get(entry)
		t := components.Transform.Get(entry)
		t.Position.X += (interp.TargetX - t.Position.X) * k
		t.Position.Y += (interp.TargetY - t.Position.Y) * k
	}
}

// State returns the last replicated state of id.
func (s *ReplicaSystem) State(id netconfig.EntityID) (messages.PlayerStateMessage, bool) {
	msg, ok := s.states[id]
	return msg, ok
}

// IDs returns the replicated entity ids in ascending order.
func (s *ReplicaSystem) IDs() []netconfig.EntityID {
	out := make([]netconfig.EntityID, 0, len(s.states))
	for id := range s.states {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close stops listening for replication messages.
func (s *ReplicaSystem) Close() {
	s.bus.UnsubscribeAll(s.subs)
	s.subs = nil
}
