package components

import (
	"github.com/yohamta/donburi"
)

type PlayerData struct {
	Direction Vector // Last non-zero movement direction
	Aim       Vector // Unit vector the weapon points along
}

var Player = donburi.NewComponentType[PlayerData]()
