// Package match builds game transcripts from a game's move history and
// writes them in the Jellyfish MAT and SGF text formats.
package match

import (
	"time"

	"github.com/yourusername/bgrules/pkg/engine"
)

// Match is a transcript of one or more games between two players.
type Match struct {
	White   string         // name shown for White
	Black   string         // name shown for Black
	Variant engine.Variant // variant played
	Date    string         // YYYY-MM-DD
	Event   string
	Games   []*Game
}

// Game is a single game within a match.
type Game struct {
	Number     int    // 1-indexed
	ID         string // engine game id
	ScoreWhite int    // White's score before this game
	ScoreBlack int    // Black's score before this game
	Turns      []Turn
	Winner     engine.Side
	Finished   bool
}

// Turn is one player's consecutive moves.
type Turn struct {
	Side  engine.Side
	Moves []engine.MoveRecord
}

// NewMatch creates an empty match.
func NewMatch(white, black string, v engine.Variant) *Match {
	return &Match{
		White:   white,
		Black:   black,
		Variant: v,
		Games:   make([]*Game, 0),
	}
}

// AddState appends the game held in s, grouping its history into turns.
func (m *Match) AddState(s *engine.GameState) *Game {
	g := &Game{
		Number:     len(m.Games) + 1,
		ID:         s.GameID,
		ScoreWhite: s.Score.White,
		ScoreBlack: s.Score.Black,
		Turns:      Turns(s.History),
	}
	if w, ok := s.Winner(); ok {
		g.Winner, g.Finished = w, true
		if w == engine.White {
			g.ScoreWhite--
		} else {
			g.ScoreBlack--
		}
	}
	if m.Date == "" && s.Timestamp > 0 {
		m.Date = time.UnixMilli(s.Timestamp).UTC().Format("2006-01-02")
	}
	m.Games = append(m.Games, g)
	return g
}

// FromState builds a one-game match from s.
func FromState(s *engine.GameState, white, black string) *Match {
	m := NewMatch(white, black, s.Variant)
	m.AddState(s)
	return m
}

// Turns splits history into runs of moves by the same side. A side can
// own two runs in a row when the opponent passed in between; die slots tell
// them apart.
func Turns(history []engine.MoveRecord) []Turn {
	var turns []Turn
	for _, rec := range history {
		if n := len(turns); n > 0 && turns[n-1].accepts(rec) {
			turns[n-1].Moves = append(turns[n-1].Moves, rec)
			continue
		}
		turns = append(turns, Turn{Side: rec.Side, Moves: []engine.MoveRecord{rec}})
	}
	return turns
}

func (t *Turn) accepts(rec engine.MoveRecord) bool {
	if rec.Side != t.Side || len(t.Moves) == 0 || len(t.Moves) >= 4 {
		return false
	}
	for _, m := range t.Moves {
		if m.DieIndex == rec.DieIndex {
			return false
		}
	}
	if len(t.Moves) == 1 {
		return true
	}
	double := t.Moves[0].Die == t.Moves[1].Die
	return double && rec.Die == t.Moves[0].Die
}

// Dice returns the die faces the turn played, in the order used.
// A double is reported once.
func (t *Turn) Dice() []int {
	if len(t.Moves) == 0 {
		return nil
	}
	if len(t.Moves) > 1 && t.Moves[0].Die == t.Moves[1].Die {
		return []int{t.Moves[0].Die, t.Moves[0].Die}
	}
	out := make([]int, len(t.Moves))
	for i, rec := range t.Moves {
		out[i] = rec.Die
	}
	return out
}
