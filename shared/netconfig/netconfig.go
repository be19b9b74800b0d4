// Package netconfig defines lightweight types shared between host and peer
// for network serialization. It must stay free of simulation dependencies so
// both binaries can import it.
package netconfig

// EntityID identifies a player entity. Ids are minted only by the host.
type EntityID uint32

// InvalidID marks a slot or record without a live entity.
const InvalidID EntityID = 0xFFFFFFFF

// Valid reports whether id refers to an entity.
func (id EntityID) Valid() bool {
	return id != InvalidID
}

// Address identifies a peer endpoint ("host:port").
type Address string

const (
	// MaxMessageSize bounds a single batched payload handed to the transport.
	MaxMessageSize = 1400

	// ProtocolVersion is written into every payload preamble.
	ProtocolVersion uint8 = 1
)

// PlayerState is the last reported life state of a player.
type PlayerState uint8

const (
	PlayerAlive PlayerState = iota
	PlayerDead
)

func (s PlayerState) String() string {
	switch s {
	case PlayerAlive:
		return "alive"
	case PlayerDead:
		return "dead"
	}
	return "unknown"
}

// TransformState marks where the authority for an entity's transform lies.
type TransformState uint8

const (
	TransformLocal TransformState = iota
	TransformClient
)

// WeaponType enumerates the weapons a player can carry.
type WeaponType uint8

const (
	WeaponStandard WeaponType = iota
	WeaponFlakCanon
	WeaponRocketLauncher
	WeaponCacoplasma
	WeaponGeneric
)

var weaponNames = map[WeaponType]string{
	WeaponStandard:       "standard",
	WeaponFlakCanon:      "flak_canon",
	WeaponRocketLauncher: "rocket_launcher",
	WeaponCacoplasma:     "cacoplasma",
	WeaponGeneric:        "generic",
}

func (w WeaponType) String() string {
	if name, ok := weaponNames[w]; ok {
		return name
	}
	return "unknown"
}

// WeaponState is the result of the last weapon update.
type WeaponState uint8

const (
	WeaponIdle WeaponState = iota
	WeaponFire
	WeaponReloading
	WeaponOutOfAmmo
)

// PickupType enumerates pickup kinds. Values index the pickup handler table.
type PickupType uint8

const (
	PickupAmmo PickupType = iota
	PickupHealth
	PickupScore
	PickupTypeCount // Must be last - used for array sizing
)

var pickupNames = [PickupTypeCount]string{"ammo", "health", "score"}

func (p PickupType) String() string {
	if p < PickupTypeCount {
		return pickupNames[p]
	}
	return "unknown"
}

// ParsePickupType maps a level property value to a PickupType.
func ParsePickupType(name string) (PickupType, bool) {
	for i, n := range pickupNames {
		if n == name {
			return PickupType(i), true
		}
	}
	return 0, false
}

// ControllerState is one snapshot of a gamepad. Axes are in [-1, 1], triggers
// in [0, 1].
type ControllerState struct {
	ID int

	A, B, X, Y                  bool
	LeftShoulder, RightShoulder bool
	Start, Back                 bool

	LeftX, LeftY   float32
	RightX, RightY float32

	LeftTrigger, RightTrigger float32
}
