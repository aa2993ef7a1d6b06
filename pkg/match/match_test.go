package match

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/bgrules/pkg/engine"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ids() engine.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%08x-match", n)
	}
}

type step struct {
	d1, d2 int
	moves  [][3]int // from, to, die; from -1 is the bar
}

func playSteps(t *testing.T, s *engine.GameState, steps []step) *engine.GameState {
	t.Helper()
	for _, st := range steps {
		var err error
		if s, err = engine.SetDice(s, st.d1, st.d2, epoch); err != nil {
			t.Fatal(err)
		}
		if len(st.moves) == 0 {
			if s, err = engine.Pass(s); err != nil {
				t.Fatal(err)
			}
			continue
		}
		for _, mv := range st.moves {
			from := engine.PointLocation(mv[0])
			if mv[0] < 0 {
				from = engine.BarLocation
			}
			m := engine.Move{From: from, To: engine.PointLocation(mv[1]), Die: mv[2]}
			id, _ := engine.TopPiece(s, from)
			if s, err = engine.ApplyMove(s, m, id); err != nil {
				t.Fatalf("ApplyMove(%s): %v", m, err)
			}
		}
	}
	return s
}

func sampleGame(t *testing.T) *engine.GameState {
	s := engine.NewGame(engine.Casual, engine.White, ids(), epoch)
	return playSteps(t, s, []step{
		{3, 5, [][3]int{{0, 3, 3}, {11, 16, 5}}},  // White 24/21 13/8
		{4, 1, [][3]int{{7, 3, 4}, {5, 4, 1}}},    // Black 8/4* 6/5
		{6, 6, nil},                               // White cannot enter
		{2, 1, [][3]int{{12, 10, 2}, {10, 9, 1}}}, // Black 13/11 11/10
	})
}

func TestTurnsGroupsBySide(t *testing.T) {
	turns := Turns(sampleGame(t).History)
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	want := []engine.Side{engine.White, engine.Black, engine.Black}
	for i, tr := range turns {
		if tr.Side != want[i] || len(tr.Moves) != 2 {
			t.Errorf("turn %d = %s with %d moves", i, tr.Side, len(tr.Moves))
		}
	}
	if d := turns[0].Dice(); len(d) != 2 || d[0] != 3 || d[1] != 5 {
		t.Errorf("dice = %v, want [3 5]", d)
	}
}

func TestTurnsDoubles(t *testing.T) {
	s := engine.NewGame(engine.Casual, engine.White, ids(), epoch)
	s = playSteps(t, s, []step{
		{6, 6, [][3]int{{0, 6, 6}, {0, 6, 6}, {11, 17, 6}, {11, 17, 6}}},
		{3, 3, [][3]int{{23, 20, 3}, {23, 20, 3}, {12, 9, 3}, {12, 9, 3}}},
	})
	turns := Turns(s.History)
	if len(turns) != 2 || len(turns[0].Moves) != 4 || len(turns[1].Moves) != 4 {
		t.Fatalf("turns = %+v", turns)
	}
	if d := turns[1].Dice(); len(d) != 2 || d[0] != 3 || d[1] != 3 {
		t.Errorf("double dice = %v, want [3 3]", d)
	}
}

func TestFromState(t *testing.T) {
	m := FromState(sampleGame(t), "Alice", "Bob")
	if m.White != "Alice" || m.Black != "Bob" || m.Variant != engine.Casual {
		t.Errorf("match = %+v", m)
	}
	if m.Date != "2024-05-01" {
		t.Errorf("date = %q", m.Date)
	}
	if len(m.Games) != 1 || m.Games[0].Finished {
		t.Fatalf("games = %+v", m.Games)
	}
}

func TestFromFinishedState(t *testing.T) {
	s := engine.NewGame(engine.Casual, engine.White, ids(), epoch)
	s.Score = engine.Score{White: 1, Black: 2}
	// Leave one White piece on 22 and put the rest outside.
	var white []engine.Piece
	for p := range s.Board.Points {
		if owner, ok := s.Board.Owner(p); ok && owner == engine.White {
			white = append(white, s.Board.Points[p]...)
			s.Board.Points[p] = engine.Stack{}
		}
	}
	s.Board.Points[22] = engine.Stack{white[0]}
	s.Board.Outside.White = append(s.Board.Outside.White, white[1:]...)

	s, err := engine.SetDice(s, 1, 2, epoch)
	if err != nil {
		t.Fatal(err)
	}
	off := engine.Move{From: engine.PointLocation(22), To: engine.OffLocation, Die: 2}
	if s, err = engine.ApplyMove(s, off, white[0].ID); err != nil {
		t.Fatal(err)
	}

	g := FromState(s, "W", "B").Games[0]
	if !g.Finished || g.Winner != engine.White {
		t.Fatalf("game = %+v", g)
	}
	if g.ScoreWhite != 1 || g.ScoreBlack != 2 {
		t.Errorf("starting score = %d-%d, want 1-2", g.ScoreWhite, g.ScoreBlack)
	}
}

func TestExportMAT(t *testing.T) {
	m := FromState(sampleGame(t), "Alice", "Bob")
	m.Event = "Friendly"

	var buf bytes.Buffer
	if err := ExportMAT(&buf, m); err != nil {
		t.Fatalf("ExportMAT error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		` ; [Player 1 "Alice"]`,
		` ; [Variant "casual"]`,
		" Game 1",
		"  1) 35: 24/21 13/8",
		"41: 8/4* 6/5",
		"  2) ",
		"21: 13/11 11/10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportMATBlackFirst(t *testing.T) {
	s := engine.NewGame(engine.Casual, engine.Black, ids(), epoch)
	s = playSteps(t, s, []step{{6, 5, [][3]int{{23, 17, 6}, {17, 12, 5}}}})
	var buf bytes.Buffer
	if err := ExportMAT(&buf, FromState(s, "W", "B")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "  1) "+strings.Repeat(" ", columnWidth)+"65: 24/18 18/13") {
		t.Errorf("black opening not in right column:\n%s", buf.String())
	}
}

func TestExportSGF(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportSGF(&buf, FromState(sampleGame(t), "Alice", "Bob")); err != nil {
		t.Fatalf("ExportSGF error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"FF[4]", "GM[6]", "PW[Alice]PB[Bob]", ";W[35xumh]", ";B[41hdfe]", ";B[21mkkj]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("disk full") }

func TestExportReportsWriteErrors(t *testing.T) {
	m := FromState(sampleGame(t), "A", "B")
	if err := ExportMAT(failWriter{}, m); err == nil {
		t.Error("ExportMAT ignored a write error")
	}
	if err := ExportSGF(failWriter{}, m); err == nil {
		t.Error("ExportSGF ignored a write error")
	}
}
