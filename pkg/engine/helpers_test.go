package engine

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fixedRand returns its values in order, as die faces 1-6.
type fixedRand struct {
	faces []int
	i     int
}

func (r *fixedRand) Intn(n int) int {
	f := r.faces[r.i%len(r.faces)]
	r.i++
	return (f - 1) % n
}

func newCasual(t *testing.T, turn Side) *GameState {
	t.Helper()
	return NewGame(Casual, turn, sequentialIDs("t"), epoch)
}

// customState places the given counts and puts each side's remaining
// pieces outside.
func customState(turn Side, white, black layout, whiteBar, blackBar int) *GameState {
	ids := sequentialIDs("c")
	s := &GameState{
		Variant:   Casual,
		Board:     NewBoard(),
		Turn:      turn,
		Dice:      Dice{Values: []int{}, Consumed: []int{}},
		History:   []MoveRecord{},
		GameID:    ids(),
		Timestamp: epoch.UnixMilli(),
	}
	b := &s.Board
	for side, lay := range [2]layout{White: white, Black: black} {
		owner := Side(side)
		for p := 0; p < NumPoints; p++ {
			for i := 0; i < lay[p]; i++ {
				b.Points[p] = append(b.Points[p], Piece{ID: pieceID(ids), Owner: owner})
			}
		}
		bar := whiteBar
		if owner == Black {
			bar = blackBar
		}
		for i := 0; i < bar; i++ {
			*b.Bar.ref(owner) = append(*b.Bar.ref(owner), Piece{ID: pieceID(ids), Owner: owner})
		}
		for b.Count(owner) < PiecesPerSide {
			*b.Outside.ref(owner) = append(*b.Outside.ref(owner), Piece{ID: pieceID(ids), Owner: owner})
		}
	}
	return s
}

func roll(t *testing.T, s *GameState, d1, d2 int) *GameState {
	t.Helper()
	next, err := SetDice(s, d1, d2, epoch)
	if err != nil {
		t.Fatalf("SetDice(%d, %d): %v", d1, d2, err)
	}
	return next
}

// play applies the legal move from -> to with die, using the top piece.
func play(t *testing.T, s *GameState, from, to Location, die int) *GameState {
	t.Helper()
	for _, m := range LegalMoves(s) {
		if m.From == from && m.To == to && m.Die == die {
			id, ok := TopPiece(s, from)
			if !ok {
				t.Fatalf("no piece at %s", from)
			}
			next, err := ApplyMove(s, m, id)
			if err != nil {
				t.Fatalf("ApplyMove(%s): %v", m, err)
			}
			return next
		}
	}
	t.Fatalf("%s/%s with %d not legal; legal: %v", from, to, die, LegalMoves(s))
	return nil
}

func pt(p int) Location { return PointLocation(p) }
