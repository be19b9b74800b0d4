package player

import (
	"math"

	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/systems"
	math2 "github.com/yohamta/donburi/features/math"
)

// PlayerLogic turns the bound controller snapshot into movement and weapon
// use, and writes the outcome into the player's PlayerInfo every step.
type PlayerLogic struct {
	id         netconfig.EntityID
	info       *PlayerInfo
	controller *netconfig.ControllerState
	registry   *Registry
	sys        Systems
	bus        *events.Bus

	weapon    netconfig.WeaponType
	tuning    config.WeaponConfig
	magazine  int32
	ammo      int32
	cooldown  int
	reload    int
	fired     bool
	aim       math2.Vec2
	direction math2.Vec2
	prevY     bool

	pickups   [netconfig.PickupTypeCount]func(amount int32)
	pickupSub events.Subscription
}

// NewPlayerLogic binds a logic to entity id. controller must stay valid for
// the lifetime of the logic.
func NewPlayerLogic(id netconfig.EntityID, info *PlayerInfo, controller *netconfig.ControllerState,
	registry *Registry, sys Systems, bus *events.Bus) *PlayerLogic {
	l := &PlayerLogic{
		id:         id,
		info:       info,
		controller: controller,
		registry:   registry,
		sys:        sys,
		bus:        bus,
		aim:        math2.Vec2{X: 1},
		direction:  math2.Vec2{X: 1},
	}
	l.pickups = [netconfig.PickupTypeCount]func(int32){
		netconfig.PickupAmmo:   l.pickupAmmo,
		netconfig.PickupHealth: l.pickupHealth,
		netconfig.PickupScore:  l.pickupScore,
	}
	l.pickupSub = events.Subscribe(bus, l.onPickup)
	l.selectWeapon(netconfig.WeaponStandard)
	l.ammo = l.tuning.StartingAmmo
	return l
}

// Update runs one step.
func (l *PlayerLogic) Update(ctx systems.UpdateContext) {
	body := l.sys.Bodies.Body(l.id)
	if l.info.State == netconfig.PlayerDead {
		if body != nil {
			body.Input = components.Vector{}
		}
		return
	}

	c := *l.controller
	l.fired = false
	l.tick()

	if mag := math.Hypot(float64(c.RightX), float64(c.RightY)); mag >= float64(config.Player.AimDeadzone) {
		l.aim = math2.Vec2{X: float64(c.RightX) / mag, Y: float64(c.RightY) / mag}
	}
	if c.Y && !l.prevY {
		l.selectWeapon((l.weapon + 1) % netconfig.WeaponType(len(config.Weapons)))
	}
	l.prevY = c.Y

	var pos math2.Vec2
	if t := l.sys.Transforms.Transform(l.id); t != nil {
		pos = t.Position
	}
	if c.X {
		l.startReload()
	}
	if c.RightTrigger > 0.5 || c.RightShoulder {
		l.fire(pos)
	}

	if body != nil {
		force := components.Vector{X: clampAxis(c.LeftX), Y: clampAxis(c.LeftY)}
		if l.fired {
			force.X *= config.Player.FireMoveScale
			force.Y *= config.Player.FireMoveScale
		}
		body.Input = force
		if mag := math.Hypot(force.X, force.Y); mag > 0 {
			l.direction = math2.Vec2{X: force.X / mag, Y: force.Y / mag}
		}
	}

	l.write(pos, body)
}

// Release gives back the pickup subscription.
func (l *PlayerLogic) Release() {
	l.bus.Unsubscribe(l.pickupSub)
}

func (l *PlayerLogic) tick() {
	if l.cooldown > 0 {
		l.cooldown--
	}
	if l.reload > 0 {
		l.reload--
		if l.reload == 0 {
			take := min(l.tuning.MagazineCapacity-l.magazine, l.ammo)
			l.magazine += take
			l.ammo -= take
		}
	}
}

func (l *PlayerLogic) selectWeapon(w netconfig.WeaponType) {
	tuning, ok := config.Weapons[w]
	if !ok {
		return
	}
	l.weapon = w
	l.tuning = tuning
	l.magazine = tuning.MagazineCapacity
	l.cooldown = 0
	l.reload = 0
}

func (l *PlayerLogic) startReload() {
	if l.reload > 0 || l.magazine >= l.tuning.MagazineCapacity || l.ammo <= 0 {
		return
	}
	l.reload = max(l.tuning.ReloadSteps, 1)
}

func (l *PlayerLogic) fire(from math2.Vec2) {
	if l.cooldown > 0 || l.reload > 0 {
		return
	}
	if l.magazine == 0 {
		l.startReload()
		return
	}
	l.magazine--
	l.cooldown = l.tuning.FireCooldown
	l.fired = true
	if target, ok := l.hitscan(from); ok {
		l.sys.Damage.ApplyDamage(target, l.tuning.Damage, l.id)
	}
}

// hitscan returns the nearest other player along the aim ray within range
// and spread.
func (l *PlayerLogic) hitscan(from math2.Vec2) (netconfig.EntityID, bool) {
	best := netconfig.InvalidID
	bestDist := l.tuning.Range
	for _, id := range l.registry.PlayerIDs() {
		if id == l.id {
			continue
		}
		t := l.sys.Transforms.Transform(id)
		if t == nil {
			continue
		}
		dx, dy := t.Position.X-from.X, t.Position.Y-from.Y
		along := dx*l.aim.X + dy*l.aim.Y
		if along < 0 || along > bestDist {
			continue
		}
		if math.Abs(dx*l.aim.Y-dy*l.aim.X) > l.tuning.Spread {
			continue
		}
		best, bestDist = id, along
	}
	return best, best.Valid()
}

func (l *PlayerLogic) weaponState() netconfig.WeaponState {
	switch {
	case l.reload > 0:
		return netconfig.WeaponReloading
	case l.fired:
		return netconfig.WeaponFire
	case l.magazine == 0:
		return netconfig.WeaponOutOfAmmo
	}
	return netconfig.WeaponIdle
}

func (l *PlayerLogic) reloadPercentage() float32 {
	if l.reload == 0 || l.tuning.ReloadSteps == 0 {
		return 1
	}
	return 1 - float32(l.reload)/float32(l.tuning.ReloadSteps)
}

func (l *PlayerLogic) write(pos math2.Vec2, body *components.PhysicsData) {
	l.registry.mutate(func() {
		l.info.Position = pos
		if body != nil {
			l.info.Velocity = math2.Vec2{X: body.SpeedX, Y: body.SpeedY}
		}
		l.info.Direction = l.direction
		l.info.Aim = l.aim
		l.info.Weapon = l.weapon
		l.info.WeaponState = l.weaponState()
		l.info.ReloadPercentage = l.reloadPercentage()
		l.info.MagazineCapacity = l.tuning.MagazineCapacity
		l.info.MagazineLeft = l.magazine
		l.info.Ammunition = l.ammo
	})
}

func (l *PlayerLogic) onPickup(ev messages.PickupEvent) events.Result {
	if ev.EntityID != l.id || ev.Type >= netconfig.PickupTypeCount {
		return events.Continue
	}
	l.pickups[ev.Type](ev.Amount)
	return events.Handled
}

func (l *PlayerLogic) pickupAmmo(amount int32) {
	l.ammo += amount
}

func (l *PlayerLogic) pickupHealth(amount int32) {
	l.sys.Damage.Heal(l.id, int(amount))
}

func (l *PlayerLogic) pickupScore(amount int32) {
	l.bus.Post(messages.ScoreEvent{EntityID: l.id, Score: amount})
}

func clampAxis(v float32) float64 {
	return math.Max(-1, math.Min(1, float64(v)))
}
