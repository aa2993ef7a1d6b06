package engine

import "time"

// RandSource is the randomness the engine needs. *math/rand.Rand satisfies it.
type RandSource interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
}

// RollDice rolls two dice for the side to move using rng and stamps the
// state with at. A double yields four copies of the value.
func RollDice(s *GameState, rng RandSource, at time.Time) (*GameState, error) {
	if s.GameOver() {
		return nil, ErrGameOver
	}
	if s.Dice.Rolled {
		return nil, ErrAlreadyRolled
	}
	d1 := rng.Intn(6) + 1
	d2 := rng.Intn(6) + 1
	return withDice(s, d1, d2, at), nil
}

// SetDice is RollDice with fixed values. It exists for replaying recorded
// games and for tests.
func SetDice(s *GameState, d1, d2 int, at time.Time) (*GameState, error) {
	if s.GameOver() {
		return nil, ErrGameOver
	}
	if s.Dice.Rolled {
		return nil, ErrAlreadyRolled
	}
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return nil, ErrInvalidDice
	}
	return withDice(s, d1, d2, at), nil
}

func withDice(s *GameState, d1, d2 int, at time.Time) *GameState {
	next := s.Clone()
	values := []int{d1, d2}
	if d1 == d2 {
		values = []int{d1, d1, d1, d1}
	}
	next.Dice = Dice{Values: values, Rolled: true, Consumed: []int{}}
	next.Timestamp = at.UnixMilli()
	return next
}
