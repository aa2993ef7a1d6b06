package engine

import (
	"fmt"
	"testing"
	"time"
)

func TestEngineSeeded(t *testing.T) {
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("%08d", n)
	}
	opts := EngineOptions{Seed: 5, Clock: func() time.Time { return epoch }, IDs: ids}
	a, b := NewEngine(opts), NewEngine(opts)

	for i := 0; i < 10; i++ {
		ga, gb := a.NewGame(Casual), b.NewGame(Casual)
		if ga.Turn != gb.Turn {
			t.Fatalf("game %d: first player differs for equal seeds", i)
		}
		ra, err := a.RollDice(ga)
		if err != nil {
			t.Fatal(err)
		}
		rb, _ := b.RollDice(gb)
		if len(ra.Dice.Values) != len(rb.Dice.Values) || ra.Dice.Values[0] != rb.Dice.Values[0] {
			t.Fatalf("game %d: dice differ for equal seeds", i)
		}
		if ra.Timestamp != epoch.UnixMilli() {
			t.Errorf("timestamp = %d, want clock value", ra.Timestamp)
		}
	}
}

func TestEngineRandomFirstPlayer(t *testing.T) {
	e := NewEngine(EngineOptions{Seed: 11})
	seen := map[Side]bool{}
	for i := 0; i < 50; i++ {
		seen[e.NewGame(Casual).Turn] = true
	}
	if !seen[White] || !seen[Black] {
		t.Errorf("first player never varied: %v", seen)
	}
}

func TestEngineDefaultIDs(t *testing.T) {
	s := NewEngine(EngineOptions{}).NewGame(Tapa)
	if len(s.GameID) != 36 {
		t.Errorf("game id %q is not a uuid", s.GameID)
	}
	if len(s.ShortID()) != 8 {
		t.Errorf("ShortID = %q", s.ShortID())
	}
	for _, pc := range s.Board.Points[0] {
		if len(pc.ID) != 8 {
			t.Errorf("piece id %q, want 8 characters", pc.ID)
		}
	}
	if err := Validate(s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRematchKeepsScore(t *testing.T) {
	e := NewEngine(EngineOptions{Seed: 3})
	prev := e.NewGame(GulBara)
	prev.Score = Score{White: 4, Black: 2}
	next := e.Rematch(prev)
	if next.Score != prev.Score || next.Variant != GulBara {
		t.Errorf("rematch = variant %s score %+v", next.Variant, next.Score)
	}
	if next.GameID == prev.GameID || len(next.History) != 0 {
		t.Error("rematch should be a fresh game")
	}
}
