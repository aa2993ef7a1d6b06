package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
)

// renderBoard draws s as text. Points are labelled with their indices;
// the top row runs 12-23 and the bottom row 11-0.
func renderBoard(w io.Writer, s *engine.GameState) {
	b := &s.Board

	var top, bottom, topLabels, bottomLabels strings.Builder
	for i := 0; i < 12; i++ {
		if i == 6 {
			for _, sb := range []*strings.Builder{&top, &bottom, &topLabels, &bottomLabels} {
				sb.WriteString(" |")
			}
		}
		fmt.Fprintf(&topLabels, " %3d", 12+i)
		fmt.Fprintf(&top, " %3s", cell(b.Points[12+i]))
		fmt.Fprintf(&bottomLabels, " %3d", 11-i)
		fmt.Fprintf(&bottom, " %3s", cell(b.Points[11-i]))
	}

	fmt.Fprintf(w, "%s game %s\n", s.Variant.Title(), s.ShortID())
	fmt.Fprintln(w, topLabels.String())
	fmt.Fprintln(w, top.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, bottom.String())
	fmt.Fprintln(w, bottomLabels.String())
	fmt.Fprintf(w, "Bar: W%d B%d   Off: W%d B%d\n",
		len(b.Bar.White), len(b.Bar.Black), len(b.Outside.White), len(b.Outside.Black))
	fmt.Fprintf(w, "Pips: W%d B%d   Score: W%d B%d\n",
		b.PipCount(engine.White), b.PipCount(engine.Black), s.Score.White, s.Score.Black)

	switch winner, over := s.Winner(); {
	case over:
		fmt.Fprintf(w, "%s wins\n", winner)
	case s.Dice.Rolled:
		fmt.Fprintf(w, "%s to play %s\n", s.Turn, formatUnused(s))
	default:
		fmt.Fprintf(w, "%s to roll\n", s.Turn)
	}
	fmt.Fprintf(w, "Position ID: %s\n", engine.PositionID(s))
}

// cell shows the owner and count of a point, or "." when empty.
func cell(st engine.Stack) string {
	if len(st) == 0 {
		return "."
	}
	return fmt.Sprintf("%c%d", st[0].Owner.String()[0], len(st))
}
