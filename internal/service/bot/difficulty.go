package bot

import "fmt"

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// MediumDepth is the fixed search depth of the medium bot.
const MediumDepth = 4

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Hard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Tune derives the search options for a difficulty from the configured
// base options. A zero depth means "use the caller's depth schedule".
func (d Difficulty) Tune(base Options) (Options, int) {
	switch d {
	case Easy:
		base.Strategy = StrategyImmediate
		return base, 0
	case Medium:
		base.Model = ModelBitboard
		base.Strategy = StrategyAlphaBeta
		return base, MediumDepth
	default:
		return base, 0
	}
}
