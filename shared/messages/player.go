package messages

import (
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

// RemoteInputMessage carries one controller snapshot from a peer. Sequence
// increases monotonically per peer; the host stamps Sender with the address
// the batch arrived on.
type RemoteInputMessage struct {
	Sender     netconfig.Address
	Sequence   uint32
	Controller netconfig.ControllerState
}

// ClientPlayerSpawned tells a peer which host entity it controls.
type ClientPlayerSpawned struct {
	ClientEntityID netconfig.EntityID
}

// PlayerStateMessage is the per-step replicated view of one player.
type PlayerStateMessage struct {
	EntityID  netconfig.EntityID
	Position  math.Vec2
	Velocity  math.Vec2
	Direction math.Vec2
	Aim       math.Vec2
	State     netconfig.PlayerState
	Score     int32
	Health    int32

	Weapon           netconfig.WeaponType
	WeaponState      netconfig.WeaponState
	MagazineCapacity int32
	MagazineLeft     int32
	Ammunition       int32
	ReloadPercentage float32
}

// PlayerDespawnedMessage tells peers to drop their replica of an entity.
type PlayerDespawnedMessage struct {
	EntityID netconfig.EntityID
}
