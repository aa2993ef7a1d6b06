package engine

import "fmt"

// ApplyMove executes m for the side to move, relocating the piece pieceID,
// and returns the resulting state. s is never modified; on error nothing is
// applied.
//
// m must match a move in LegalMoves(s) by source, destination and die value.
// Its DieIndex is honoured when it names an unused slot with that value.
// When the last die is consumed, or the remaining dice cannot be played,
// the dice are cleared and the turn passes to the opponent. Bearing off the
// fifteenth piece scores a game for the mover.
func ApplyMove(s *GameState, m Move, pieceID string) (*GameState, error) {
	legal, ok := findLegal(s, m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	mover := s.Turn
	next := s.Clone()
	b := &next.Board

	piece, err := takePiece(b, mover, legal.From, pieceID)
	if err != nil {
		return nil, err
	}

	switch legal.Action {
	case ActionMove, ActionReentry:
		b.Points[legal.To.Point] = append(b.Points[legal.To.Point], piece)
	case ActionCapture:
		hit := b.Points[legal.To.Point][0]
		bar := b.Bar.ref(hit.Owner)
		*bar = append(*bar, hit)
		b.Points[legal.To.Point] = Stack{piece}
	case ActionBearOff:
		out := b.Outside.ref(mover)
		*out = append(*out, piece)
	}

	next.Dice.Consumed = append(next.Dice.Consumed, legal.DieIndex)
	next.History = append(next.History, MoveRecord{
		PieceID:  pieceID,
		Side:     mover,
		From:     legal.From,
		To:       legal.To,
		Die:      legal.Die,
		DieIndex: legal.DieIndex,
		Action:   legal.Action,
	})

	if b.BorneOff(mover) == PiecesPerSide {
		if mover == White {
			next.Score.White++
		} else {
			next.Score.Black++
		}
	}

	if len(next.Dice.Consumed) == len(next.Dice.Values) || !HasLegalMove(next) {
		endTurn(next)
	}
	return next, nil
}

// Pass ends a rolled turn in which no die can be played.
func Pass(s *GameState) (*GameState, error) {
	if !s.Dice.Rolled {
		return nil, ErrNotRolled
	}
	if HasLegalMove(s) {
		return nil, fmt.Errorf("%w: a legal move is available", ErrIllegalMove)
	}
	next := s.Clone()
	endTurn(next)
	return next, nil
}

// MustPass reports whether the dice are rolled but nothing can be played.
func MustPass(s *GameState) bool {
	return s.Dice.Rolled && !HasLegalMove(s)
}

func endTurn(s *GameState) {
	s.Dice = Dice{Values: []int{}, Consumed: []int{}}
	s.Turn = s.Turn.Opponent()
}

// findLegal looks m up in the legal set and resolves which die slot it uses.
func findLegal(s *GameState, m Move) (Move, bool) {
	for _, lm := range LegalMoves(s) {
		if lm.From != m.From || lm.To != m.To || lm.Die != m.Die {
			continue
		}
		if m.DieIndex != lm.DieIndex && m.DieIndex >= 0 && m.DieIndex < len(s.Dice.Values) &&
			s.Dice.Values[m.DieIndex] == m.Die && !s.Dice.IsConsumed(m.DieIndex) {
			lm.DieIndex = m.DieIndex
		}
		return lm, true
	}
	return Move{}, false
}

// takePiece removes pieceID from the mover's source container.
func takePiece(b *Board, mover Side, from Location, pieceID string) (Piece, error) {
	var src *Stack
	switch from.Kind {
	case KindBar:
		src = b.Bar.ref(mover)
	case KindPoint:
		src = &b.Points[from.Point]
	default:
		return Piece{}, fmt.Errorf("%w: cannot move from %s", ErrIllegalMove, from)
	}
	for i, pc := range *src {
		if pc.ID == pieceID {
			*src = append((*src)[:i], (*src)[i+1:]...)
			return pc, nil
		}
	}
	return Piece{}, fmt.Errorf("%w: %q at %s", ErrPieceNotFound, pieceID, from)
}

// TopPiece returns the id of the top piece the mover could take from loc.
func TopPiece(s *GameState, loc Location) (string, bool) {
	var st Stack
	switch loc.Kind {
	case KindBar:
		st = s.Board.Bar.Of(s.Turn)
	case KindPoint:
		st = s.Board.Points[loc.Point]
	}
	if len(st) == 0 {
		return "", false
	}
	return st[len(st)-1].ID, true
}
