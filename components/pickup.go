package components

import (
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi"
)

type PickupData struct {
	Type      netconfig.PickupType
	Amount    int32
	Active    bool
	RespawnIn int // Steps until an inactive pickup returns
}

var Pickup = donburi.NewComponentType[PickupData]()
