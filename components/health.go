package components

import (
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi"
)

type HealthData struct {
	Current      int
	Max          int
	LastAttacker netconfig.EntityID
}

var Health = donburi.NewComponentType[HealthData]()
