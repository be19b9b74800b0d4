package player

import (
	"testing"

	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *hostFixture) input(addr netconfig.Address, seq uint32, c netconfig.ControllerState) {
	f.bus.Dispatch(messages.RemoteInputMessage{Sender: addr, Sequence: seq, Controller: c})
}

func (f *hostFixture) step(n int) {
	for i := 0; i < n; i++ {
		f.logic.Update(systems.UpdateContext{Step: uint64(i)})
	}
}

func TestPlayerLogicHitscanDamagesTarget(t *testing.T) {
	f := newHostFixture(t)
	f.connect(t, "A") // spawns at (100, 100)
	victim := f.connect(t, "B")
	f.connect(t, "C") // (400, 400) is off the aim ray
	weapon := config.Weapons[netconfig.WeaponStandard]

	f.input("A", 1, netconfig.ControllerState{RightX: 1, RightTrigger: 1})
	f.step(1)

	shooter, _ := f.registry.Remote("A")
	assert.Equal(t, config.Player.Health-weapon.Damage, f.damage.Health(victim))
	assert.Equal(t, weapon.MagazineCapacity-1, shooter.Info.MagazineLeft)
	assert.Equal(t, netconfig.WeaponFire, shooter.Info.WeaponState)
	assert.Equal(t, 1.0, shooter.Info.Aim.X)

	f.step(1)
	assert.Equal(t, weapon.MagazineCapacity-1, shooter.Info.MagazineLeft, "cooldown blocks the next shot")

	f.step(weapon.FireCooldown)
	assert.Equal(t, weapon.MagazineCapacity-2, shooter.Info.MagazineLeft)
	assert.Equal(t, config.Player.Health-2*weapon.Damage, f.damage.Health(victim))
}

func TestPlayerLogicMissesBehind(t *testing.T) {
	f := newHostFixture(t)
	f.connect(t, "A")
	victim := f.connect(t, "B")

	f.input("A", 1, netconfig.ControllerState{RightX: -1, RightTrigger: 1})
	f.step(1)
	assert.Equal(t, config.Player.Health, f.damage.Health(victim))
}

func TestPlayerLogicReload(t *testing.T) {
	f := newHostFixture(t)
	f.connect(t, "A")
	weapon := config.Weapons[netconfig.WeaponStandard]
	rec, _ := f.registry.Remote("A")

	f.input("A", 1, netconfig.ControllerState{RightShoulder: true})
	f.step(1)
	require.Equal(t, weapon.MagazineCapacity-1, rec.Info.MagazineLeft)

	f.input("A", 2, netconfig.ControllerState{X: true})
	f.step(1)
	assert.Equal(t, netconfig.WeaponReloading, rec.Info.WeaponState)
	assert.Less(t, rec.Info.ReloadPercentage, float32(1))

	f.input("A", 3, netconfig.ControllerState{})
	f.step(weapon.ReloadSteps)
	assert.Equal(t, weapon.MagazineCapacity, rec.Info.MagazineLeft)
	assert.Equal(t, weapon.StartingAmmo-1, rec.Info.Ammunition)
	assert.Equal(t, netconfig.WeaponIdle, rec.Info.WeaponState)
	assert.Equal(t, float32(1), rec.Info.ReloadPercentage)
}

func TestPlayerLogicCyclesWeaponOnPress(t *testing.T) {
	f := newHostFixture(t)
	f.connect(t, "A")
	rec, _ := f.registry.Remote("A")

	f.input("A", 1, netconfig.ControllerState{Y: true})
	f.step(3)
	assert.Equal(t, netconfig.WeaponFlakCanon, rec.Info.Weapon, "holding the button switches once")
	assert.Equal(t, config.Weapons[netconfig.WeaponFlakCanon].MagazineCapacity, rec.Info.MagazineCapacity)

	f.input("A", 2, netconfig.ControllerState{})
	f.step(1)
	f.input("A", 3, netconfig.ControllerState{Y: true})
	f.step(1)
	assert.Equal(t, netconfig.WeaponRocketLauncher, rec.Info.Weapon)
}

func TestPlayerLogicPickupTable(t *testing.T) {
	f := newHostFixture(t)
	id := f.connect(t, "A")
	rec, _ := f.registry.Remote("A")
	weapon := config.Weapons[netconfig.WeaponStandard]

	assert.True(t, f.bus.Dispatch(messages.PickupEvent{EntityID: id, Type: netconfig.PickupAmmo, Amount: 7}))
	f.step(1)
	assert.Equal(t, weapon.StartingAmmo+7, rec.Info.Ammunition)

	f.damage.ApplyDamage(id, 40, netconfig.InvalidID)
	f.bus.Dispatch(messages.PickupEvent{EntityID: id, Type: netconfig.PickupHealth, Amount: 25})
	assert.Equal(t, config.Player.Health-15, f.damage.Health(id))

	f.bus.Dispatch(messages.PickupEvent{EntityID: id, Type: netconfig.PickupScore, Amount: 50})
	assert.Equal(t, 1, f.bus.Pending())
	f.bus.ProcessEvents()
	assert.Equal(t, int32(50), rec.Info.Score)

	assert.False(t, f.bus.Dispatch(messages.PickupEvent{EntityID: 999, Type: netconfig.PickupAmmo, Amount: 1}))
	assert.False(t, f.bus.Dispatch(messages.PickupEvent{EntityID: id, Type: netconfig.PickupTypeCount}))
}

func TestPlayerLogicReleasesSubscription(t *testing.T) {
	f := newHostFixture(t)
	f.connect(t, "A")
	f.connect(t, "B")
	require.Equal(t, 2, events.Subscribers[messages.PickupEvent](f.bus))

	f.bus.Dispatch(messages.PlayerDisconnectedEvent{Address: "A"})
	f.entities.FlushReleased()
	assert.Equal(t, 1, events.Subscribers[messages.PickupEvent](f.bus))
}
