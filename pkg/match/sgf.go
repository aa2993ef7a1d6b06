package match

import (
	"io"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
)

// SGF (Smart Game Format) as used by GNU Backgammon.
// See: https://www.red-bean.com/sgf/backgammon.html
//
//	(;FF[4]GM[6]AP[bgrules:1.0]
//	PW[White]PB[Black]
//	MI[length:0][game:0][ws:0][bs:0]
//	;W[35xumh]
//	;B[41hdfe])
//
// Points are letters a-x from the mover's side, y is the bar, z is off.

// ExportSGF writes each game of m as its own SGF game tree.
func ExportSGF(w io.Writer, m *Match) error {
	ew := &errWriter{w: w}
	for _, g := range m.Games {
		exportGameSGF(ew, m, g)
	}
	return ew.err
}

func exportGameSGF(ew *errWriter, m *Match, g *Game) {
	ew.printf("(;FF[4]GM[6]AP[bgrules:1.0]\n")
	ew.printf("PW[%s]PB[%s]\n", m.White, m.Black)
	ew.printf("MI[length:0][game:%d][ws:%d][bs:%d]\n", g.Number-1, g.ScoreWhite, g.ScoreBlack)
	if m.Variant != "" {
		ew.printf("VA[%s]\n", m.Variant)
	}
	if m.Date != "" {
		ew.printf("DT[%s]\n", m.Date)
	}
	if m.Event != "" {
		ew.printf("EV[%s]\n", m.Event)
	}

	for _, t := range g.Turns {
		player := "W"
		if t.Side == engine.Black {
			player = "B"
		}
		ew.printf(";%s[%s%s]\n", player, formatDice(t.Dice()), formatTurnSGF(t))
	}
	if g.Finished {
		winner := "W"
		if g.Winner == engine.Black {
			winner = "B"
		}
		ew.printf("RE[%s+1]\n", winner)
	}
	ew.printf(")\n")
}

func formatTurnSGF(t Turn) string {
	var b strings.Builder
	for _, rec := range t.Moves {
		b.WriteByte(sgfPoint(rec.Side, rec.From))
		b.WriteByte(sgfPoint(rec.Side, rec.To))
	}
	return b.String()
}

// sgfPoint maps a location to its SGF letter from side's perspective.
func sgfPoint(side engine.Side, l engine.Location) byte {
	switch l.Kind {
	case engine.KindBar:
		return 'y'
	case engine.KindOff:
		return 'z'
	}
	return byte('a' + engine.PointNumber(side, l.Point) - 1)
}
