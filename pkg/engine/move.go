package engine

// LegalMoves returns every legal single-die move for the side to move,
// given the dice not yet consumed this turn. Call it again after each
// executed move. An empty result with dice pending means the rest of the
// turn is forfeit.
//
// Pieces on the bar must enter before anything else moves. Doubles are
// reported once per distinct die value, carrying the lowest unused slot.
func LegalMoves(s *GameState) []Move {
	if !s.Dice.Rolled || len(s.Dice.Values) == 0 || s.GameOver() {
		return nil
	}

	side := s.Turn
	b := &s.Board
	dice := distinctUnused(&s.Dice)

	if b.OnBar(side) {
		var moves []Move
		for _, d := range dice {
			to := side.EntryPoint(d.value)
			if b.Blocked(to, side) {
				continue
			}
			action := ActionReentry
			if b.IsBlot(to, side.Opponent()) {
				action = ActionCapture
			}
			moves = append(moves, Move{
				From:     BarLocation,
				To:       PointLocation(to),
				Die:      d.value,
				DieIndex: d.index,
				Action:   action,
			})
		}
		return moves
	}

	canBearOff := b.CanBearOff(side)
	var moves []Move
	for p := 0; p < NumPoints; p++ {
		if owner, ok := b.Owner(p); !ok || owner != side {
			continue
		}
		for _, d := range dice {
			if m, ok := pointMove(b, side, p, d, canBearOff); ok {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// pointMove checks a single (point, die) pair for side.
func pointMove(b *Board, side Side, p int, d slot, canBearOff bool) (Move, bool) {
	dest := p + side.Direction()*d.value
	if dest >= 0 && dest < NumPoints {
		if b.Blocked(dest, side) {
			return Move{}, false
		}
		action := ActionMove
		if b.IsBlot(dest, side.Opponent()) {
			action = ActionCapture
		}
		return Move{
			From:     PointLocation(p),
			To:       PointLocation(dest),
			Die:      d.value,
			DieIndex: d.index,
			Action:   action,
		}, true
	}

	if !canBearOff {
		return Move{}, false
	}
	// Exact bear-off, or a larger die when no piece of side sits nearer the edge.
	if dest != side.edge() && b.hasPiecesAhead(p, side) {
		return Move{}, false
	}
	return Move{
		From:     PointLocation(p),
		To:       OffLocation,
		Die:      d.value,
		DieIndex: d.index,
		Action:   ActionBearOff,
	}, true
}

// slot is an unused die: its value and the slot index that would be consumed.
type slot struct {
	value int
	index int
}

// distinctUnused returns one slot per distinct unused die value, in slot order.
func distinctUnused(d *Dice) []slot {
	var out []slot
	seen := make(map[int]bool, 2)
	for _, i := range d.Unused() {
		v := d.Values[i]
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, slot{value: v, index: i})
	}
	return out
}

// HasLegalMove reports whether the side to move can play any die.
func HasLegalMove(s *GameState) bool {
	return len(LegalMoves(s)) > 0
}

// MovesFrom filters moves to those starting at from.
func MovesFrom(moves []Move, from Location) []Move {
	var out []Move
	for _, m := range moves {
		if m.From == from {
			out = append(out, m)
		}
	}
	return out
}
