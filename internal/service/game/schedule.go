package game

import "fmt"

// DepthSchedule deepens the engine as the board fills up: every EveryTurns
// machine turns the depth grows by one until it reaches Max.
type DepthSchedule struct {
	Initial    int
	EveryTurns int
	Max        int
}

func DefaultSchedule() DepthSchedule {
	return DepthSchedule{Initial: 7, EveryTurns: 5, Max: 10}
}

func (s DepthSchedule) Validate() error {
	if s.Initial < 0 || s.Max < s.Initial {
		return fmt.Errorf("depth schedule %d..%d is empty", s.Initial, s.Max)
	}
	if s.EveryTurns < 0 {
		return fmt.Errorf("depth schedule step %d is negative", s.EveryTurns)
	}
	return nil
}

// Step returns the depth for machine turn number turn (1-based) given the
// depth used so far. A zero EveryTurns keeps the depth fixed.
func (s DepthSchedule) Step(turn, depth int) int {
	if s.EveryTurns > 0 && turn%s.EveryTurns == 0 && depth < s.Max {
		depth++
	}
	return depth
}
