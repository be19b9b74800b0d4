package components

import (
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetIDData carries the host-minted id of an entity.
type NetIDData struct {
	ID netconfig.EntityID
}

var NetID = donburi.NewComponentType[NetIDData]()
