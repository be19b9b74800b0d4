package tags

import "github.com/yohamta/donburi"

var (
	Player  = donburi.NewTag().SetName("Player")
	Replica = donburi.NewTag().SetName("Replica")
	Pickup  = donburi.NewTag().SetName("Pickup")
)

// Resolv tags for physics collision
const (
	ResolvSolid  = "solid"
	ResolvPlayer = "Player"
	ResolvPickup = "pickup"
)
