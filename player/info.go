// Package player owns player identity: the two local slots, the records of
// remote peers, the host and peer daemons that spawn and despawn player
// entities, and the per-entity logic that turns a controller snapshot into
// movement and weapon fire.
package player

import (
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

// PlayerInfo is the state of one player as last written by its logic.
type PlayerInfo struct {
	EntityID netconfig.EntityID
	Active   bool
	Score    int32
	State    netconfig.PlayerState

	Position  math.Vec2
	Velocity  math.Vec2
	Direction math.Vec2
	Aim       math.Vec2

	Weapon           netconfig.WeaponType
	WeaponState      netconfig.WeaponState
	ReloadPercentage float32
	MagazineCapacity int32
	MagazineLeft     int32
	Ammunition       int32
}

func newPlayerInfo() PlayerInfo {
	return PlayerInfo{EntityID: netconfig.InvalidID}
}

// clear forgets everything, including the score.
func (p *PlayerInfo) clear() {
	*p = newPlayerInfo()
}

// kill marks the player dead and unbinds its entity. Score is kept.
func (p *PlayerInfo) kill() {
	p.Active = false
	p.State = netconfig.PlayerDead
	p.EntityID = netconfig.InvalidID
	p.Velocity = math.Vec2{}
}

// bind makes p the live player of id at pos. Score is kept.
func (p *PlayerInfo) bind(id netconfig.EntityID, pos math.Vec2) {
	score := p.Score
	*p = newPlayerInfo()
	p.Score = score
	p.EntityID = id
	p.Active = true
	p.State = netconfig.PlayerAlive
	p.Position = pos
	p.Direction = math.Vec2{X: 1}
	p.Aim = math.Vec2{X: 1}
}

// StateMessage builds the replicated view of p.
func (p *PlayerInfo) StateMessage() messages.PlayerStateMessage {
	return messages.PlayerStateMessage{
		EntityID:         p.EntityID,
		Position:         p.Position,
		Velocity:         p.Velocity,
		Direction:        p.Direction,
		Aim:              p.Aim,
		State:            p.State,
		Score:            p.Score,
		Weapon:           p.Weapon,
		WeaponState:      p.WeaponState,
		MagazineCapacity: p.MagazineCapacity,
		MagazineLeft:     p.MagazineLeft,
		Ammunition:       p.Ammunition,
		ReloadPercentage: p.ReloadPercentage,
	}
}

// applyState copies a replicated state into p. Score is left alone; peers
// receive score changes as ScoreEvents.
func (p *PlayerInfo) applyState(msg messages.PlayerStateMessage) {
	p.State = msg.State
	p.Position = msg.Position
	p.Velocity = msg.Velocity
	p.Direction = msg.Direction
	p.Aim = msg.Aim
	p.Weapon = msg.Weapon
	p.WeaponState = msg.WeaponState
	p.MagazineCapacity = msg.MagazineCapacity
	p.MagazineLeft = msg.MagazineLeft
	p.Ammunition = msg.Ammunition
	p.ReloadPercentage = msg.ReloadPercentage
}
