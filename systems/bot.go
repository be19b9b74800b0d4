package systems

import (
	"math"
	"math/rand"

	cfg "github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// BotController produces a wandering, occasionally firing controller for
// headless runs. The same seed always yields the same input sequence.
type BotController struct {
	rng        *rand.Rand
	difficulty cfg.BotDifficultyConfig
	countdown  int
	moveX      float32
	moveY      float32
	aimX       float32
	aimY       float32
	firing     bool
	step       int
}

func NewBotController(difficulty cfg.BotDifficulty, seed int64) *BotController {
	d, ok := cfg.Bot.Difficulties[difficulty]
	if !ok {
		d = cfg.Bot.Difficulties[cfg.BotDifficultyNormal]
	}
	return &BotController{
		rng:        rand.New(rand.NewSource(seed)),
		difficulty: d,
	}
}

// Update writes this step's input into state.
func (b *BotController) Update(state *netconfig.ControllerState) {
	b.step++
	if b.countdown <= 0 {
		b.decide()
		b.countdown = max(b.difficulty.ReactionDelay, 1)
	}
	b.countdown--

	id := state.ID
	*state = netconfig.ControllerState{ID: id}
	state.LeftX = b.moveX
	state.LeftY = b.moveY
	state.RightX = b.aimX
	state.RightY = b.aimY
	if b.firing {
		state.RightTrigger = 1
	}
	// Tap A now and then so a dead local bot asks to respawn.
	state.A = b.step%10 == 0
	// Reload between bursts.
	state.X = !b.firing && b.step%25 == 0
}

func (b *BotController) decide() {
	angle := b.rng.Float64() * 2 * math.Pi
	scale := b.difficulty.MoveScale
	b.moveX = float32(math.Cos(angle)) * scale
	b.moveY = float32(math.Sin(angle)) * scale

	aim := b.rng.Float64() * 2 * math.Pi
	b.aimX = float32(math.Cos(aim))
	b.aimY = float32(math.Sin(aim))

	b.firing = b.rng.Float64() < b.difficulty.FireChance
}
