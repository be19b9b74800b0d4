package player

import (
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/rs/zerolog"
	"github.com/yohamta/donburi/features/math"
)

// ClientPlayerDaemon runs slot one on a peer. The peer never mints entity
// ids: the slot is bound only when the host confirms a spawn.
type ClientPlayerDaemon struct {
	registry     *Registry
	bus          *events.Bus
	camera       CameraSystem
	controllerID int
	subs         []events.Subscription
	log          zerolog.Logger
}

func NewClientPlayerDaemon(registry *Registry, bus *events.Bus, camera CameraSystem) *ClientPlayerDaemon {
	d := &ClientPlayerDaemon{
		registry:     registry,
		bus:          bus,
		camera:       camera,
		controllerID: noController,
		log:          logging.For("client-daemon"),
	}
	d.subs = append(d.subs,
		events.Subscribe(bus, d.onControllerAttached),
		events.Subscribe(bus, d.onControllerDetached),
		events.Subscribe(bus, d.onClientPlayerSpawned),
		events.Subscribe(bus, d.onPlayerState),
		events.Subscribe(bus, d.onPlayerDespawned),
		events.Subscribe(bus, d.onScore),
	)
	return d
}

// ControllerID returns the local controller driving slot one, or -1.
func (d *ClientPlayerDaemon) ControllerID() int {
	return d.controllerID
}

func (d *ClientPlayerDaemon) onControllerAttached(ev messages.ControllerAttached) events.Result {
	if d.controllerID != noController {
		return events.Continue
	}
	d.controllerID = ev.ID
	if !d.registry.SlotOne().Active {
		d.log.Info().Int("controller", ev.ID).Msg("controller attached, waiting for the host to spawn a player")
	}
	return events.Continue
}

func (d *ClientPlayerDaemon) onControllerDetached(ev messages.ControllerDetached) events.Result {
	if ev.ID != d.controllerID {
		return events.Continue
	}
	d.controllerID = noController
	d.registry.mutate(d.registry.SlotOne().clear)
	d.camera.Unfollow()
	d.log.Info().Int("controller", ev.ID).Msg("controller detached, local player cleared")
	return events.Continue
}

func (d *ClientPlayerDaemon) onClientPlayerSpawned(msg messages.ClientPlayerSpawned) events.Result {
	if !msg.ClientEntityID.Valid() {
		return events.Handled
	}
	slot := d.registry.SlotOne()
	d.registry.mutate(func() { slot.bind(msg.ClientEntityID, slot.Position) })
	d.camera.Follow(msg.ClientEntityID, math.Vec2{})
	d.log.Info().Uint32("entity", uint32(msg.ClientEntityID)).Msg("host spawned our player")
	return events.Handled
}

func (d *ClientPlayerDaemon) onPlayerState(msg messages.PlayerStateMessage) events.Result {
	slot := d.registry.SlotOne()
	if slot.EntityID == msg.EntityID {
		d.registry.mutate(func() { slot.applyState(msg) })
	}
	return events.Continue
}

func (d *ClientPlayerDaemon) onPlayerDespawned(msg messages.PlayerDespawnedMessage) events.Result {
	slot := d.registry.SlotOne()
	if !slot.Active || slot.EntityID != msg.EntityID {
		return events.Continue
	}
	d.registry.mutate(slot.kill)
	d.camera.Unfollow()
	d.log.Info().Uint32("entity", uint32(msg.EntityID)).Msg("our player was destroyed")
	return events.Continue
}

func (d *ClientPlayerDaemon) onScore(ev messages.ScoreEvent) events.Result {
	d.registry.ApplyScore(ev.EntityID, ev.Score)
	return events.Continue
}

// Close stops event delivery and releases the camera.
func (d *ClientPlayerDaemon) Close() {
	d.bus.UnsubscribeAll(d.subs)
	d.subs = nil
	if d.registry.SlotOne().Active {
		d.camera.Unfollow()
	}
}

// LocalEntity returns the host-assigned id of the local player.
func (d *ClientPlayerDaemon) LocalEntity() (netconfig.EntityID, bool) {
	slot := d.registry.SlotOne()
	return slot.EntityID, slot.Active
}
