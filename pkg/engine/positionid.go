package engine

import "github.com/yourusername/bgrules/internal/positionid"

// PositionID returns the GNU Backgammon position ID of s, seen from the
// side to move.
func PositionID(s *GameState) string {
	return positionid.Encode(gnuBoard(&s.Board, s.Turn))
}

// gnuBoard converts b to per-player counts in each side's own numbering,
// with the side on roll in row 1.
func gnuBoard(b *Board, onRoll Side) positionid.Board {
	var out positionid.Board
	rows := [2]Side{onRoll.Opponent(), onRoll}
	for row, side := range rows {
		for p, pt := range b.Points {
			if len(pt) > 0 && pt[0].Owner == side {
				out[row][PointNumber(side, p)-1] = uint8(len(pt))
			}
		}
		out[row][positionid.BarIndex] = uint8(len(b.Bar.Of(side)))
	}
	return out
}
