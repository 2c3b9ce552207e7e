package bot

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

const (
	// Infinity is both the search bound and the horizon sentinel. It sits
	// far outside every real score: ±(WinOffset+WinBase) on the bitboard and
	// ±(GridWinScore + depth*AgingPenalty) on the grid.
	Infinity = math.MaxInt32

	// WinBase is the bitboard terminal score before the ply discount.
	WinBase = 22

	// WinOffset lifts positional terminal scores above any window sum.
	WinOffset = 1 << 20

	GridWinScore = 100000
	GridTie      = -1
	AgingPenalty = 3
)

// LeafMode selects how the bitboard search scores its leaves.
type LeafMode string

const (
	// LeafSentinel scores terminals as ±(22 - ply/2) and returns ±Infinity
	// at the depth horizon, so the search is blind past it.
	LeafSentinel LeafMode = "sentinel"
	// LeafPositional lifts terminals by WinOffset and scores horizon leaves
	// with the window heuristic.
	LeafPositional LeafMode = "positional"
)

// WindowPreset holds the per-window weights of the positional heuristic.
type WindowPreset struct {
	Name     string `json:"name"`
	Four     int    `json:"four"`
	Three    int    `json:"three"`
	Two      int    `json:"two"`
	OppFour  int    `json:"oppFour"`
	OppThree int    `json:"oppThree"`
	OppTwo   int    `json:"oppTwo"`
}

var (
	PresetOffline = WindowPreset{Name: "offline", Four: 100, Three: 24, Two: 12, OppFour: 100, OppThree: 12, OppTwo: 6}
	PresetOnline  = WindowPreset{Name: "online", Four: 1000, Three: 50, Two: 10, OppFour: 1000, OppThree: 100, OppTwo: 10}
)

func PresetByName(name string) (WindowPreset, error) {
	switch name {
	case PresetOffline.Name:
		return PresetOffline, nil
	case PresetOnline.Name:
		return PresetOnline, nil
	default:
		return WindowPreset{}, fmt.Errorf("unknown heuristic preset %q", name)
	}
}

// Score rates one window holding own, opp and empty cells.
func (w WindowPreset) Score(own, opp, empty int) int {
	score := 0

	switch {
	case own == 4:
		score += w.Four
	case own == 3 && empty == 1:
		score += w.Three
	case own == 2 && empty == 2:
		score += w.Two
	}

	switch {
	case opp == 4:
		score -= w.OppFour
	case opp == 3 && empty == 1:
		score -= w.OppThree
	case opp == 2 && empty == 2:
		score -= w.OppTwo
	}
	return score
}

// windowMasks holds every run of four cells in bitboard layout.
var windowMasks = buildWindowMasks()

var directions = [][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal /
	{-1, 1}, // diagonal \
}

func inBounds(row, col int) bool {
	return row >= 0 && row < domain.Rows && col >= 0 && col < domain.Columns
}

func buildWindowMasks() []uint64 {
	var masks []uint64
	for _, d := range directions {
		for r := 0; r < domain.Rows; r++ {
			for c := 0; c < domain.Columns; c++ {
				if !inBounds(r+3*d[0], c+3*d[1]) {
					continue
				}
				var m uint64
				for i := 0; i < domain.ToWin; i++ {
					m |= uint64(1) << uint((domain.Rows+1)*(c+i*d[1])+r+i*d[0])
				}
				masks = append(masks, m)
			}
		}
	}
	return masks
}

// EvaluateMasks sums the window scores of own against opp.
func EvaluateMasks(own, opp uint64, preset WindowPreset) int {
	score := 0
	for _, w := range windowMasks {
		o := bits.OnesCount64(own & w)
		d := bits.OnesCount64(opp & w)
		score += preset.Score(o, d, domain.ToWin-o-d)
	}
	return score
}

// EvaluateGrid is the brute-force window sum on the dense grid for piece.
func EvaluateGrid(g domain.Grid, piece domain.PlayerID, preset WindowPreset) int {
	own, opp := int8(piece), int8(piece.Opponent())
	score := 0
	for _, d := range directions {
		for r := 0; r < domain.Rows; r++ {
			for c := 0; c < domain.Columns; c++ {
				if !inBounds(r+3*d[0], c+3*d[1]) {
					continue
				}
				o, x, e := 0, 0, 0
				for i := 0; i < domain.ToWin; i++ {
					switch g[r+i*d[0]][c+i*d[1]] {
					case own:
						o++
					case opp:
						x++
					default:
						e++
					}
				}
				score += preset.Score(o, x, e)
			}
		}
	}
	return score
}

// Evaluator scores bitboard leaves from the view of pos.Own.
type Evaluator interface {
	Terminal(pos domain.Position, status domain.GameStatus) int
	Horizon(pos domain.Position) int
}

func NewEvaluator(mode LeafMode, preset WindowPreset) (Evaluator, error) {
	switch mode {
	case LeafSentinel:
		return sentinelEvaluator{}, nil
	case LeafPositional:
		return positionalEvaluator{preset: preset}, nil
	default:
		return nil, fmt.Errorf("unknown leaf mode %q", mode)
	}
}

// terminalScore rewards faster wins: 22 minus the number of moves each side made.
func terminalScore(pos domain.Position, status domain.GameStatus) int {
	switch status {
	case pos.OwnWins():
		return WinBase - pos.Ply/2
	case pos.OpponentWins():
		return -(WinBase - pos.Ply/2)
	default:
		return 0
	}
}

type sentinelEvaluator struct{}

func (sentinelEvaluator) Terminal(pos domain.Position, status domain.GameStatus) int {
	return terminalScore(pos, status)
}

func (sentinelEvaluator) Horizon(pos domain.Position) int {
	if pos.OwnToMove() {
		return Infinity
	}
	return -Infinity
}

type positionalEvaluator struct {
	preset WindowPreset
}

func (positionalEvaluator) Terminal(pos domain.Position, status domain.GameStatus) int {
	score := terminalScore(pos, status)
	switch {
	case score > 0:
		return score + WinOffset
	case score < 0:
		return score - WinOffset
	}
	return 0
}

func (e positionalEvaluator) Horizon(pos domain.Position) int {
	return EvaluateMasks(pos.Own, pos.Opponent(), e.preset)
}
