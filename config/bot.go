package config

// BotDifficulty affects how often a bot changes course and fires
type BotDifficulty int

const (
	BotDifficultyEasy BotDifficulty = iota
	BotDifficultyNormal
	BotDifficultyHard
)

// BotDifficultyConfig holds tuning values for bot behavior at a specific difficulty
type BotDifficultyConfig struct {
	ReactionDelay int     // Steps between course changes
	FireChance    float64 // Probability of holding the trigger on a course change
	MoveScale     float32 // Stick magnitude used when wandering
}

// BotConfigData holds all bot-related configuration
type BotConfigData struct {
	Difficulties map[BotDifficulty]BotDifficultyConfig
}

// Bot holds bot AI configuration
var Bot BotConfigData

func init() {
	Bot = BotConfigData{
		Difficulties: map[BotDifficulty]BotDifficultyConfig{
			BotDifficultyEasy: {
				ReactionDelay: 30, // 1.5 seconds at 20 Hz
				FireChance:    0.2,
				MoveScale:     0.5,
			},
			BotDifficultyNormal: {
				ReactionDelay: 15,
				FireChance:    0.4,
				MoveScale:     0.8,
			},
			BotDifficultyHard: {
				ReactionDelay: 5, // Near-instant reaction
				FireChance:    0.7,
				MoveScale:     1.0,
			},
		},
	}
}
