package config

import (
	"time"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// NetConfig contains transport and replication configuration
type NetConfig struct {
	Port          uint
	TickRate      int           // Simulation steps per second
	ReadLimit     int64         // Largest websocket frame accepted from a peer
	InboundBuffer int           // Capacity of the host's inbound event channel
	OutboxSize    int           // Pending payloads per peer before drops
	InboundRate   float64       // Batches per second accepted from one peer
	InboundBurst  int           // Burst allowance for InboundRate
	WriteTimeout  time.Duration // Per-payload websocket write deadline
	DialTimeout   time.Duration
	ReplicaLerp   float64 // Fraction of the remaining distance a replica moves per step
}

// PlayerConfig contains all player-related configuration values
type PlayerConfig struct {
	// Movement
	MaxSpeed      float64
	Acceleration  float64
	Friction      float64
	AimDeadzone   float32 // Right stick magnitude below which aim is kept
	FireMoveScale float64 // Movement force multiplier while the weapon fires

	// Combat
	Health    int
	KillScore int32 // Awarded to the killer when a player is destroyed

	// Respawn
	RespawnSteps int // Steps a destroyed remote player waits before respawning

	// Dimensions
	CollisionWidth  float64
	CollisionHeight float64
}

// WeaponConfig contains the tuning of a single weapon type
type WeaponConfig struct {
	Damage           int
	Range            float64
	Spread           float64 // Max perpendicular distance from the aim ray that still hits
	MagazineCapacity int32
	StartingAmmo     int32
	FireCooldown     int // steps
	ReloadSteps      int
}

// PickupConfig contains pickup tuning
type PickupConfig struct {
	AmmoAmount   int32
	HealthAmount int32
	ScoreAmount  int32
	RespawnSteps int
	Size         float64
}

// CameraConfig contains camera behavior configuration
type CameraConfig struct {
	FollowDuration float32 // Seconds the camera eases towards a new follow target
	LocalOffsetY   float64 // Vertical offset when following a host-local player
}

var Net NetConfig
var Player PlayerConfig
var Weapons map[netconfig.WeaponType]WeaponConfig
var Pickup PickupConfig
var Camera CameraConfig

func init() {
	// Net Config
	Net = NetConfig{
		Port:          7373,
		TickRate:      20,
		ReadLimit:     64 * 1024,
		InboundBuffer: 1024,
		OutboxSize:    64,
		InboundRate:   60, // generous: peers send one batch per step
		InboundBurst:  30,
		WriteTimeout:  2 * time.Second,
		DialTimeout:   5 * time.Second,
		ReplicaLerp:   0.5,
	}

	// Player Config
	Player = PlayerConfig{
		MaxSpeed:      6.0,
		Acceleration:  0.75,
		Friction:      0.5,
		AimDeadzone:   0.2,
		FireMoveScale: 0.5,

		Health:    100,
		KillScore: 100,

		RespawnSteps: 60, // 3 seconds at 20 Hz

		CollisionWidth:  16,
		CollisionHeight: 16,
	}

	// Weapon Config
	Weapons = map[netconfig.WeaponType]WeaponConfig{
		netconfig.WeaponStandard:       {Damage: 10, Range: 300, Spread: 6, MagazineCapacity: 12, StartingAmmo: 48, FireCooldown: 4, ReloadSteps: 20},
		netconfig.WeaponFlakCanon:      {Damage: 25, Range: 120, Spread: 20, MagazineCapacity: 6, StartingAmmo: 24, FireCooldown: 10, ReloadSteps: 30},
		netconfig.WeaponRocketLauncher: {Damage: 60, Range: 400, Spread: 10, MagazineCapacity: 2, StartingAmmo: 8, FireCooldown: 20, ReloadSteps: 40},
		netconfig.WeaponCacoplasma:     {Damage: 15, Range: 250, Spread: 8, MagazineCapacity: 20, StartingAmmo: 60, FireCooldown: 3, ReloadSteps: 25},
		netconfig.WeaponGeneric:        {Damage: 5, Range: 200, Spread: 4, MagazineCapacity: 30, StartingAmmo: 90, FireCooldown: 2, ReloadSteps: 15},
	}

	// Pickup Config
	Pickup = PickupConfig{
		AmmoAmount:   20,
		HealthAmount: 25,
		ScoreAmount:  50,
		RespawnSteps: 200, // 10 seconds at 20 Hz
		Size:         16,
	}

	// Camera Config
	Camera = CameraConfig{
		FollowDuration: 0.5,
		LocalOffsetY:   -48,
	}
}
