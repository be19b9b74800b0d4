package player

import (
	"testing"

	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi/features/math"
)

func TestClientDaemonAdoptsHostID(t *testing.T) {
	bus := events.NewBus()
	reg := NewRegistry()
	cam := &MockCamera{}
	d := NewClientPlayerDaemon(reg, bus, cam)

	bus.Dispatch(messages.ControllerAttached{ID: 3})
	assert.Equal(t, 3, d.ControllerID())
	_, active := d.LocalEntity()
	assert.False(t, active, "the peer never mints its own player")
	assert.Empty(t, reg.PlayerIDs())
	cam.AssertNotCalled(t, "Follow")

	cam.On("Follow", netconfig.EntityID(7), math.Vec2{}).Once()
	bus.Dispatch(messages.ClientPlayerSpawned{ClientEntityID: 7})
	id, active := d.LocalEntity()
	require.True(t, active)
	assert.Equal(t, netconfig.EntityID(7), id)
	assert.Equal(t, []netconfig.EntityID{7}, reg.PlayerIDs())
	cam.AssertExpectations(t)

	bus.Dispatch(messages.PlayerStateMessage{EntityID: 7, Position: math.Vec2{X: 5, Y: 6}, Ammunition: 30, Score: 999})
	bus.Dispatch(messages.PlayerStateMessage{EntityID: 8, Position: math.Vec2{X: 50}})
	assert.Equal(t, math.Vec2{X: 5, Y: 6}, reg.SlotOne().Position)
	assert.Equal(t, int32(30), reg.SlotOne().Ammunition)
	assert.Zero(t, reg.SlotOne().Score, "scores arrive as events")

	bus.Dispatch(messages.ScoreEvent{EntityID: 7, Score: 5})
	bus.Dispatch(messages.ScoreEvent{EntityID: 8, Score: 5})
	assert.Equal(t, int32(5), reg.SlotOne().Score)

	cam.On("Unfollow").Once()
	bus.Dispatch(messages.ControllerDetached{ID: 3})
	_, active = d.LocalEntity()
	assert.False(t, active)
	assert.Equal(t, -1, d.ControllerID())
	cam.AssertExpectations(t)
}

func TestClientDaemonHandlesDeathAndRespawn(t *testing.T) {
	bus := events.NewBus()
	reg := NewRegistry()
	cam := newMockCamera()
	d := NewClientPlayerDaemon(reg, bus, cam)
	defer d.Close()

	bus.Dispatch(messages.ClientPlayerSpawned{ClientEntityID: 4})
	bus.Dispatch(messages.ScoreEvent{EntityID: 4, Score: 100})

	bus.Dispatch(messages.PlayerDespawnedMessage{EntityID: 9})
	assert.True(t, reg.SlotOne().Active, "other despawns leave us alone")

	bus.Dispatch(messages.PlayerDespawnedMessage{EntityID: 4})
	assert.False(t, reg.SlotOne().Active)
	assert.Equal(t, netconfig.PlayerDead, reg.SlotOne().State)
	cam.AssertCalled(t, "Unfollow")

	bus.Dispatch(messages.ClientPlayerSpawned{ClientEntityID: 11})
	id, active := d.LocalEntity()
	assert.True(t, active)
	assert.Equal(t, netconfig.EntityID(11), id)
	assert.Equal(t, netconfig.PlayerAlive, reg.SlotOne().State)
	assert.Equal(t, int32(100), reg.SlotOne().Score, "score survives a respawn")
	cam.AssertCalled(t, "Follow", netconfig.EntityID(11), math.Vec2{})
}

func TestClientDaemonCloseStopsDelivery(t *testing.T) {
	bus := events.NewBus()
	reg := NewRegistry()
	d := NewClientPlayerDaemon(reg, bus, newMockCamera())

	d.Close()
	bus.Dispatch(messages.ClientPlayerSpawned{ClientEntityID: 4})
	_, active := d.LocalEntity()
	assert.False(t, active)
	assert.Zero(t, events.Subscribers[messages.ClientPlayerSpawned](bus))
}
