package messages

import "github.com/automoto/doomerang-netplay/shared/netconfig"

// PlayerConnectedEvent is raised by the transport when a peer address is first
// seen.
type PlayerConnectedEvent struct {
	Address netconfig.Address
}

// PlayerDisconnectedEvent is raised when a peer goes away.
type PlayerDisconnectedEvent struct {
	Address netconfig.Address
}

// ScoreEvent adds Score to the player owning EntityID.
type ScoreEvent struct {
	EntityID netconfig.EntityID
	Score    int32
}

// ControllerAttached and ControllerDetached are local-only events raised by
// the input layer.
type ControllerAttached struct {
	ID int
}

type ControllerDetached struct {
	ID int
}

// PickupEvent is published by the pickup system when an entity touches a
// pickup item.
type PickupEvent struct {
	EntityID netconfig.EntityID
	Type     netconfig.PickupType
	Amount   int32
}
