package match

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
)

// MAT is the Jellyfish/gnubg match format:
//
//	 ; [Player 1 "White"]
//	 ; [Player 2 "Black"]
//	 ; [Variant "casual"]
//	 Unlimited match
//
//	 Game 1
//	 White : 0                          Black : 0
//	  1) 35: 24/21 13/8                 41: 8/4* 6/5
//
// White is always the left column.

const columnWidth = 34

// ExportMAT writes m in MAT format.
func ExportMAT(w io.Writer, m *Match) error {
	ew := &errWriter{w: w}
	if m.Event != "" {
		ew.printf(" ; [Event \"%s\"]\n", m.Event)
	}
	if m.Date != "" {
		ew.printf(" ; [Date \"%s\"]\n", m.Date)
	}
	ew.printf(" ; [Player 1 \"%s\"]\n", m.White)
	ew.printf(" ; [Player 2 \"%s\"]\n", m.Black)
	if m.Variant != "" {
		ew.printf(" ; [Variant \"%s\"]\n", m.Variant)
	}
	ew.printf(" Unlimited match\n\n")

	for _, g := range m.Games {
		exportGameMAT(ew, m, g)
	}
	return ew.err
}

func exportGameMAT(ew *errWriter, m *Match, g *Game) {
	ew.printf(" Game %d\n", g.Number)
	ew.printf(" %s : %d                          %s : %d\n", m.White, g.ScoreWhite, m.Black, g.ScoreBlack)

	num := 0
	open := false // a line with only the left column written
	for _, t := range g.Turns {
		text := fmt.Sprintf("%s: %s", formatDice(t.Dice()), formatTurnMAT(t))
		if t.Side == engine.White {
			if open {
				ew.printf("\n")
			}
			num++
			ew.printf("%3d) %-*s", num, columnWidth, text)
			open = true
			continue
		}
		if !open {
			num++
			ew.printf("%3d) %-*s", num, columnWidth, "")
		}
		ew.printf("%s\n", text)
		open = false
	}
	if open {
		ew.printf("\n")
	}
	if g.Finished {
		winner := m.White
		if g.Winner == engine.Black {
			winner = m.Black
		}
		ew.printf("      Wins 1 point\n")
		ew.printf(" ; %s wins\n", winner)
	}
	ew.printf("\n")
}

func formatDice(dice []int) string {
	var b strings.Builder
	for _, d := range dice {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

func formatTurnMAT(t Turn) string {
	return engine.FormatRecords(t.Moves)
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
