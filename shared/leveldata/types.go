// Package leveldata provides TMX level parsing shared between host and peer.
// It has no dependencies on donburi or resolv; pure data only.
package leveldata

import "github.com/automoto/doomerang-netplay/shared/netconfig"

// LevelData holds everything the simulation needs from a TMX level file.
type LevelData struct {
	SolidRects  []SolidRect
	SpawnPoints []SpawnPoint
	Pickups     []PickupPoint
	MapWidth    int
	MapHeight   int
}

// SolidRect represents a solid collision tile.
type SolidRect struct {
	X, Y, W, H float64
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}

// PickupPoint is a pickup item placed in the level.
type PickupPoint struct {
	X, Y   float64
	Type   netconfig.PickupType
	Amount int32 // Zero takes the configured default
}
