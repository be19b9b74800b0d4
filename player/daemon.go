package player

import (
	"errors"
	"fmt"

	"github.com/automoto/doomerang-netplay/archetypes"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/network"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/shared/protocol"
	"github.com/automoto/doomerang-netplay/systems"
	"github.com/rs/zerolog"
	"github.com/yohamta/donburi/features/math"
)

const noController = -1

// DaemonConfig tunes where and what the host daemon spawns.
type DaemonConfig struct {
	Template    string      // Entity template of a player, archetypes.PlayerTemplate if empty
	SpawnPoints []math.Vec2 // Used round-robin; the origin if empty
}

// PlayerDaemon runs the host side of player lifecycle: local slots follow
// controller attach/detach, remote players follow peer connect/disconnect.
type PlayerDaemon struct {
	registry    *Registry
	bus         *events.Bus
	sys         Systems
	controllers *systems.Controllers
	outgoing    *network.Queue
	codec       *protocol.Codec
	cfg         DaemonConfig
	log         zerolog.Logger

	slotController [slotCount]int
	nextSpawn      int
	subs           []events.Subscription

	scores    []messages.ScoreEvent
	despawned []netconfig.EntityID
}

func NewPlayerDaemon(registry *Registry, bus *events.Bus, sys Systems, controllers *systems.Controllers,
	outgoing *network.Queue, codec *protocol.Codec, cfg DaemonConfig) *PlayerDaemon {
	if cfg.Template == "" {
		cfg.Template = archetypes.PlayerTemplate
	}
	if codec == nil {
		codec = protocol.Default
	}
	d := &PlayerDaemon{
		registry:    registry,
		bus:         bus,
		sys:         sys,
		controllers: controllers,
		outgoing:    outgoing,
		codec:       codec,
		cfg:         cfg,
		log:         logging.For("daemon"),
	}
	for i := range d.slotController {
		d.slotController[i] = noController
	}

	d.subs = append(d.subs,
		events.Subscribe(bus, d.onControllerAttached),
		events.Subscribe(bus, d.onControllerDetached),
		events.Subscribe(bus, d.onPlayerConnected),
		events.Subscribe(bus, d.onPlayerDisconnected),
		events.Subscribe(bus, d.onRemoteInput),
		events.Subscribe(bus, d.onScore),
	)
	return d
}

// SpawnLocal binds controller id to a free local slot and spawns its player.
func (d *PlayerDaemon) SpawnLocal(controllerID int) (Slot, error) {
	slot := SlotOne
	if d.slotController[SlotOne] != noController {
		slot = SlotTwo
	}
	if d.slotController[slot] != noController {
		return slot, errors.New("both local slots are taken")
	}

	d.slotController[slot] = controllerID
	controller := d.controllers.Attach(controllerID)
	if _, err := d.spawnLocal(slot, controller); err != nil {
		d.slotController[slot] = noController
		return slot, err
	}
	return slot, nil
}

// DespawnLocal releases the player of the slot bound to controller id.
func (d *PlayerDaemon) DespawnLocal(controllerID int) bool {
	for i, bound := range d.slotController {
		if bound != controllerID {
			continue
		}
		slot := Slot(i)
		info := d.registry.Slot(slot)
		d.release(info.EntityID)
		if slot == SlotOne {
			d.sys.Camera.Unfollow()
		}
		d.registry.mutate(info.clear)
		d.slotController[slot] = noController
		d.controllers.Detach(controllerID)
		d.log.Info().Stringer("slot", slot).Int("controller", controllerID).Msg("local player despawned")
		return true
	}
	return false
}

func (d *PlayerDaemon) spawnLocal(slot Slot, controller *netconfig.ControllerState) (netconfig.EntityID, error) {
	info := d.registry.Slot(slot)
	id, err := d.spawn(info, controller, netconfig.TransformLocal, func(id netconfig.EntityID, _ int, who netconfig.EntityID) {
		d.registry.mutate(info.kill)
		if slot == SlotOne {
			d.sys.Camera.Unfollow()
		}
		d.destroyed(id, who)
	})
	if err != nil {
		return id, err
	}
	if slot == SlotOne {
		d.sys.Camera.Follow(id, math.Vec2{Y: config.Camera.LocalOffsetY})
	}
	d.log.Info().Stringer("slot", slot).Uint32("entity", uint32(id)).Msg("local player spawned")
	return id, nil
}

func (d *PlayerDaemon) spawnRemote(rec *RemotePlayer) (netconfig.EntityID, error) {
	id, err := d.spawn(&rec.Info, &rec.Controller, netconfig.TransformClient, func(id netconfig.EntityID, _ int, who netconfig.EntityID) {
		d.registry.mutate(func() {
			rec.Info.kill()
			rec.RespawnIn = config.Player.RespawnSteps
		})
		d.destroyed(id, who)
	})
	if err != nil {
		return id, err
	}
	d.sendTo(rec.Address, messages.ClientPlayerSpawned{ClientEntityID: id})
	d.log.Info().Str("peer", string(rec.Address)).Uint32("entity", uint32(id)).Msg("remote player spawned")
	return id, nil
}

// spawn creates a player entity, places it, sets its transform authority,
// hooks destruction, attaches logic and binds info to it.
func (d *PlayerDaemon) spawn(info *PlayerInfo, controller *netconfig.ControllerState,
	authority netconfig.TransformState, onDestroyed systems.DamageCallback) (netconfig.EntityID, error) {
	id, err := d.sys.Entities.CreateEntity(d.cfg.Template)
	if err != nil {
		return netconfig.InvalidID, fmt.Errorf("spawn player: %w", err)
	}

	pos := d.nextSpawnPoint()
	d.sys.Bodies.AddBody(id, pos.X, pos.Y)
	d.sys.Transforms.SetPosition(id, pos)
	d.sys.Transforms.SetTransformState(id, authority)
	d.sys.Damage.SetHealth(id, config.Player.Health)
	d.sys.Damage.SetDamageCallback(id, systems.Destroyed, onDestroyed)
	d.sys.Logic.AddLogic(id, NewPlayerLogic(id, info, controller, d.registry, d.sys, d.bus))
	d.registry.mutate(func() { info.bind(id, pos) })
	return id, nil
}

func (d *PlayerDaemon) nextSpawnPoint() math.Vec2 {
	if len(d.cfg.SpawnPoints) == 0 {
		return math.Vec2{}
	}
	p := d.cfg.SpawnPoints[d.nextSpawn%len(d.cfg.SpawnPoints)]
	d.nextSpawn++
	return p
}

// destroyed awards the kill and schedules the despawn notice for peers.
func (d *PlayerDaemon) destroyed(id, who netconfig.EntityID) {
	d.despawned = append(d.despawned, id)
	if who.Valid() && who != id {
		d.bus.Post(messages.ScoreEvent{EntityID: who, Score: config.Player.KillScore})
	}
	d.log.Info().Uint32("entity", uint32(id)).Uint32("by", uint32(who)).Msg("player destroyed")
}

func (d *PlayerDaemon) release(id netconfig.EntityID) {
	if !id.Valid() {
		return
	}
	d.sys.Entities.ReleaseEntity(id)
	d.despawned = append(d.despawned, id)
}

func (d *PlayerDaemon) onControllerAttached(ev messages.ControllerAttached) events.Result {
	if _, err := d.SpawnLocal(ev.ID); err != nil {
		d.log.Warn().Err(err).Int("controller", ev.ID).Msg("controller not bound")
	}
	return events.Continue
}

func (d *PlayerDaemon) onControllerDetached(ev messages.ControllerDetached) events.Result {
	d.DespawnLocal(ev.ID)
	return events.Continue
}

func (d *PlayerDaemon) onPlayerConnected(ev messages.PlayerConnectedEvent) events.Result {
	rec, created := d.registry.Connect(ev.Address)
	if !created {
		d.log.Debug().Str("peer", string(ev.Address)).Msg("duplicate connect ignored")
		return events.Handled
	}
	if _, err := d.spawnRemote(rec); err != nil {
		d.log.Error().Err(err).Str("peer", string(ev.Address)).Msg("cannot spawn remote player")
	}
	return events.Handled
}

func (d *PlayerDaemon) onPlayerDisconnected(ev messages.PlayerDisconnectedEvent) events.Result {
	rec, ok := d.registry.Remove(ev.Address)
	if !ok {
		return events.Handled
	}
	d.release(rec.Info.EntityID)
	d.log.Info().Str("peer", string(ev.Address)).Msg("remote player removed")
	return events.Handled
}

func (d *PlayerDaemon) onRemoteInput(msg messages.RemoteInputMessage) events.Result {
	if !d.registry.AcceptInput(msg) {
		d.log.Debug().Str("peer", string(msg.Sender)).Uint32("seq", msg.Sequence).Msg("stale input dropped")
	}
	return events.Handled
}

func (d *PlayerDaemon) onScore(ev messages.ScoreEvent) events.Result {
	if d.registry.ApplyScore(ev.EntityID, ev.Score) {
		d.scores = append(d.scores, ev)
	}
	return events.Continue
}

// Update respawns dead players: remote players once their countdown runs
// out, local players when they press A.
func (d *PlayerDaemon) Update(ctx systems.UpdateContext) {
	for _, rec := range d.registry.Remotes() {
		if rec.Info.State != netconfig.PlayerDead || rec.Info.Active {
			continue
		}
		if rec.RespawnIn > 0 {
			d.registry.mutate(func() { rec.RespawnIn-- })
			continue
		}
		if _, err := d.spawnRemote(rec); err != nil {
			d.log.Error().Err(err).Str("peer", string(rec.Address)).Msg("cannot respawn remote player")
		}
	}

	for i, controllerID := range d.slotController {
		slot := Slot(i)
		info := d.registry.Slot(slot)
		if controllerID == noController || info.Active {
			continue
		}
		controller := d.controllers.Get(controllerID)
		if controller == nil || !controller.A {
			continue
		}
		if _, err := d.spawnLocal(slot, controller); err != nil {
			d.log.Error().Err(err).Stringer("slot", slot).Msg("cannot respawn local player")
		}
	}
}

// Replicate queues, for every connected peer, the despawn notices, the state
// of every active player and the score events applied since the last call.
func (d *PlayerDaemon) Replicate() {
	despawned, scores := d.despawned, d.scores
	d.despawned, d.scores = nil, nil

	var states []messages.PlayerStateMessage
	d.registry.mu.RLock()
	for i := range d.registry.slots {
		states = d.appendState(states, &d.registry.slots[i])
	}
	for _, rec := range d.registry.sortedRemotes() {
		states = d.appendState(states, &rec.Info)
	}
	d.registry.mu.RUnlock()

	for _, addr := range d.registry.Addresses() {
		sender := network.NewBatchedMessageSender(addr, d.outgoing, d.codec)
		for _, id := range despawned {
			d.send(sender, messages.PlayerDespawnedMessage{EntityID: id})
		}
		for _, msg := range states {
			d.send(sender, msg)
		}
		for _, ev := range scores {
			d.send(sender, ev)
		}
		sender.Close()
	}
}

func (d *PlayerDaemon) appendState(states []messages.PlayerStateMessage, info *PlayerInfo) []messages.PlayerStateMessage {
	if !info.Active || !info.EntityID.Valid() {
		return states
	}
	msg := info.StateMessage()
	if t := d.sys.Transforms.Transform(info.EntityID); t != nil {
		msg.Position = t.Position
	}
	msg.Health = int32(d.sys.Damage.Health(info.EntityID))
	return append(states, msg)
}

func (d *PlayerDaemon) sendTo(addr netconfig.Address, msg messages.Message) {
	sender := network.NewBatchedMessageSender(addr, d.outgoing, d.codec)
	defer sender.Close()
	d.send(sender, msg)
}

func (d *PlayerDaemon) send(sender *network.BatchedMessageSender, msg messages.Message) {
	if err := sender.SendMessage(msg); err != nil {
		d.log.Warn().Err(err).Msgf("cannot send %T", msg)
	}
}

// Close stops event delivery, releases every player entity the daemon owns
// and clears the registry.
func (d *PlayerDaemon) Close() {
	d.bus.UnsubscribeAll(d.subs)
	d.subs = nil

	for i, controllerID := range d.slotController {
		if controllerID == noController {
			continue
		}
		d.release(d.registry.Slot(Slot(i)).EntityID)
		d.slotController[i] = noController
	}
	if d.registry.SlotOne().Active {
		d.sys.Camera.Unfollow()
	}
	for _, rec := range d.registry.Remotes() {
		d.release(rec.Info.EntityID)
	}
	d.registry.Clear()
}
