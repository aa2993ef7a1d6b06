package engine

import (
	"fmt"
	"strconv"
	"strings"
)

func (m Move) String() string {
	return fmt.Sprintf("%s/%s (die %d)", m.From, m.To, m.Die)
}

// PointNumber converts absolute point p to side's own 1-24 numbering, where
// 1 is the point nearest the bear-off edge.
func PointNumber(side Side, p int) int {
	return side.distanceToEdge(p)
}

func formatLocation(side Side, l Location) string {
	switch l.Kind {
	case KindBar:
		return "bar"
	case KindOff:
		return "off"
	}
	return strconv.Itoa(PointNumber(side, l.Point))
}

// FormatMove renders m in the usual from/to notation seen from side, with
// a trailing * on a hit, e.g. "13/10", "bar/22*", "6/off".
func FormatMove(side Side, m Move) string {
	s := formatLocation(side, m.From) + "/" + formatLocation(side, m.To)
	if m.Action == ActionCapture {
		s += "*"
	}
	return s
}

// FormatRecord renders a history entry like FormatMove.
func FormatRecord(r MoveRecord) string {
	return FormatMove(r.Side, Move{From: r.From, To: r.To, Die: r.Die, DieIndex: r.DieIndex, Action: r.Action})
}

// FormatRecords joins several history entries with spaces.
func FormatRecords(rs []MoveRecord) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = FormatRecord(r)
	}
	return strings.Join(parts, " ")
}
