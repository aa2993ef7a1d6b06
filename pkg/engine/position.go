// Package engine implements the backgammon rules: board state, dice, legal
// move generation and move execution.
package engine

import (
	"fmt"
	"strconv"
)

const (
	// NumPoints is the number of points on the board.
	NumPoints = 24
	// PiecesPerSide is the number of pieces each side owns.
	PiecesPerSide = 15
	// HomeSize is the number of points in a home quadrant.
	HomeSize = 6
)

// Side identifies one of the two players.
type Side uint8

const (
	White Side = iota // moves from point 0 toward point 23
	Black             // moves from point 23 toward point 0
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// Direction is +1 for White and -1 for Black.
func (s Side) Direction() int {
	if s == White {
		return 1
	}
	return -1
}

// HomeRange returns the first and last point of the side's home quadrant.
func (s Side) HomeRange() (lo, hi int) {
	if s == White {
		return NumPoints - HomeSize, NumPoints - 1
	}
	return 0, HomeSize - 1
}

// InHome reports whether point p lies in the side's home quadrant.
func (s Side) InHome(p int) bool {
	lo, hi := s.HomeRange()
	return p >= lo && p <= hi
}

// EntryPoint returns the point a piece enters on from the bar with the given die.
func (s Side) EntryPoint(die int) int {
	if s == White {
		return die - 1
	}
	return NumPoints - die
}

// edge is the first index past the board in the side's direction of travel.
func (s Side) edge() int {
	if s == White {
		return NumPoints
	}
	return -1
}

// distanceToEdge is the number of pips a piece on point p needs to bear off.
func (s Side) distanceToEdge(p int) int {
	if s == White {
		return NumPoints - p
	}
	return p + 1
}

func (s Side) String() string {
	switch s {
	case White:
		return "WHITE"
	case Black:
		return "BLACK"
	}
	return fmt.Sprintf("Side(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	if s != White && s != Black {
		return nil, fmt.Errorf("invalid side %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "WHITE":
		*s = White
	case "BLACK":
		*s = Black
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Piece is a single checker. Pieces are created at setup and only ever
// relocated afterwards.
type Piece struct {
	ID    string `json:"id"`
	Owner Side   `json:"owner"`
}

// Stack is an ordered pile of pieces; the last element is the top.
type Stack []Piece

// Stacks holds one stack per side. It backs both the bar and the
// borne-off (outside) collections.
type Stacks struct {
	White Stack `json:"WHITE"`
	Black Stack `json:"BLACK"`
}

// Of returns the stack belonging to side.
func (s *Stacks) Of(side Side) Stack {
	if side == White {
		return s.White
	}
	return s.Black
}

func (s *Stacks) ref(side Side) *Stack {
	if side == White {
		return &s.White
	}
	return &s.Black
}

// Board is the 24 points plus the bar and the outside area.
type Board struct {
	Points  []Stack `json:"points"`
	Bar     Stacks  `json:"bar"`
	Outside Stacks  `json:"outside"`
}

// NewBoard returns an empty board. Every container is allocated, so empty
// stacks encode as [] rather than null.
func NewBoard() Board {
	b := Board{
		Points:  make([]Stack, NumPoints),
		Bar:     Stacks{White: Stack{}, Black: Stack{}},
		Outside: Stacks{White: Stack{}, Black: Stack{}},
	}
	for i := range b.Points {
		b.Points[i] = Stack{}
	}
	return b
}

// Owner returns the side occupying point p. ok is false for an empty point.
func (b *Board) Owner(p int) (side Side, ok bool) {
	if len(b.Points[p]) == 0 {
		return 0, false
	}
	return b.Points[p][0].Owner, true
}

// Blocked reports whether point p holds two or more pieces of the side
// opposing mover.
func (b *Board) Blocked(p int, mover Side) bool {
	pt := b.Points[p]
	return len(pt) >= 2 && pt[0].Owner != mover
}

// IsBlot reports whether point p holds exactly one piece owned by side.
func (b *Board) IsBlot(p int, side Side) bool {
	pt := b.Points[p]
	return len(pt) == 1 && pt[0].Owner == side
}

// OnBar reports whether side has any piece waiting on the bar.
func (b *Board) OnBar(side Side) bool {
	return len(b.Bar.Of(side)) > 0
}

// CanBearOff reports whether side has no piece on the bar and every piece
// still on the board sits inside its home quadrant.
func (b *Board) CanBearOff(side Side) bool {
	if b.OnBar(side) {
		return false
	}
	for p := 0; p < NumPoints; p++ {
		if owner, ok := b.Owner(p); ok && owner == side && !side.InHome(p) {
			return false
		}
	}
	return true
}

// OnPoints counts the pieces side has on the 24 points.
func (b *Board) OnPoints(side Side) int {
	n := 0
	for _, pt := range b.Points {
		for _, pc := range pt {
			if pc.Owner == side {
				n++
			}
		}
	}
	return n
}

// Count returns the total pieces of side across points, bar and outside.
func (b *Board) Count(side Side) int {
	return b.OnPoints(side) + len(b.Bar.Of(side)) + len(b.Outside.Of(side))
}

// BorneOff returns how many pieces side has borne off.
func (b *Board) BorneOff(side Side) int {
	return len(b.Outside.Of(side))
}

// PipCount is the total number of pips side needs to bear off every piece.
// A piece on the bar counts as 25.
func (b *Board) PipCount(side Side) int {
	pips := len(b.Bar.Of(side)) * (NumPoints + 1)
	for p, pt := range b.Points {
		if len(pt) > 0 && pt[0].Owner == side {
			pips += len(pt) * side.distanceToEdge(p)
		}
	}
	return pips
}

// hasPiecesAhead reports whether any piece of side sits on a point strictly
// between point p and its bear-off edge.
func (b *Board) hasPiecesAhead(p int, side Side) bool {
	for q := p + side.Direction(); q >= 0 && q < NumPoints; q += side.Direction() {
		if owner, ok := b.Owner(q); ok && owner == side {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no slices with b.
func (b *Board) Clone() Board {
	out := Board{Points: make([]Stack, len(b.Points))}
	for i, pt := range b.Points {
		out.Points[i] = pt.clone()
	}
	out.Bar = Stacks{White: b.Bar.White.clone(), Black: b.Bar.Black.clone()}
	out.Outside = Stacks{White: b.Outside.White.clone(), Black: b.Outside.Black.clone()}
	return out
}

func (s Stack) clone() Stack {
	if s == nil {
		return nil
	}
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

// LocationKind tags where a piece is.
type LocationKind uint8

const (
	KindPoint LocationKind = iota
	KindBar
	KindOff
)

// Location is a piece container: a board point, the bar or the outside.
type Location struct {
	Kind  LocationKind
	Point int // valid only when Kind == KindPoint
}

var (
	// BarLocation is the mover's bar.
	BarLocation = Location{Kind: KindBar}
	// OffLocation is the mover's outside (borne off) area.
	OffLocation = Location{Kind: KindOff}
)

// PointLocation returns the location of board point p.
func PointLocation(p int) Location {
	return Location{Kind: KindPoint, Point: p}
}

// IsPoint reports whether l is a board point.
func (l Location) IsPoint() bool { return l.Kind == KindPoint }

func (l Location) String() string {
	switch l.Kind {
	case KindBar:
		return "bar"
	case KindOff:
		return "off"
	}
	return strconv.Itoa(l.Point)
}

// ParseLocation accepts "bar", "off" or a point index 0-23.
func ParseLocation(s string) (Location, error) {
	switch s {
	case "bar":
		return BarLocation, nil
	case "off":
		return OffLocation, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q", s)
	}
	if p < 0 || p >= NumPoints {
		return Location{}, fmt.Errorf("point %d out of range", p)
	}
	return PointLocation(p), nil
}

// MarshalJSON encodes a point as its index and the bar/outside as strings.
func (l Location) MarshalJSON() ([]byte, error) {
	if l.Kind == KindPoint {
		return []byte(strconv.Itoa(l.Point)), nil
	}
	return []byte(strconv.Quote(l.String())), nil
}

// UnmarshalJSON is the inverse of MarshalJSON. Points must be bare numbers;
// only "bar" and "off" are accepted as strings.
func (l *Location) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unq, err := strconv.Unquote(s); err == nil {
		if unq != "bar" && unq != "off" {
			return fmt.Errorf("invalid location %s", s)
		}
		s = unq
	}
	loc, err := ParseLocation(s)
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// Action classifies a move.
type Action uint8

const (
	ActionMove    Action = iota // plain move between points
	ActionCapture               // lands on an opposing blot
	ActionReentry               // enters from the bar onto an empty or own point
	ActionBearOff               // leaves the board
)

var actionNames = [...]string{"MOVE", "HIT", "RECOVER", "BEAR"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if int(a) >= len(actionNames) {
		return nil, fmt.Errorf("invalid action %d", uint8(a))
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	for i, name := range actionNames {
		if name == string(b) {
			*a = Action(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", b)
}

// Move is a candidate single-die transition for the side to move.
type Move struct {
	From     Location `json:"from"`
	To       Location `json:"to"`
	Die      int      `json:"die"`
	DieIndex int      `json:"dieIndex"`
	Action   Action   `json:"action"`
}

// MoveRecord is a history entry for an executed move.
type MoveRecord struct {
	PieceID  string   `json:"pieceId"`
	Side     Side     `json:"side"`
	From     Location `json:"from"`
	To       Location `json:"to"`
	Die      int      `json:"die"`
	DieIndex int      `json:"dieIndex"`
	Action   Action   `json:"action"`
}

// Dice is the roll for the current turn.
type Dice struct {
	Values   []int `json:"values"`
	Rolled   bool  `json:"rolled"`
	Consumed []int `json:"consumed"`
}

// IsConsumed reports whether die slot i has been used.
func (d *Dice) IsConsumed(i int) bool {
	for _, c := range d.Consumed {
		if c == i {
			return true
		}
	}
	return false
}

// Unused returns the unused die slot indices in ascending order.
func (d *Dice) Unused() []int {
	var out []int
	for i := range d.Values {
		if !d.IsConsumed(i) {
			out = append(out, i)
		}
	}
	return out
}

// Score is the cumulative number of games won per side.
type Score struct {
	White int `json:"WHITE"`
	Black int `json:"BLACK"`
}

// Of returns side's score.
func (s Score) Of(side Side) int {
	if side == White {
		return s.White
	}
	return s.Black
}

// GameState is a complete snapshot of a game. Every engine operation
// returns a new GameState and leaves its input untouched.
type GameState struct {
	Variant   Variant      `json:"variant"`
	Board     Board        `json:"board"`
	Turn      Side         `json:"turn"`
	Dice      Dice         `json:"dice"`
	History   []MoveRecord `json:"history"`
	GameID    string       `json:"gameId"`
	Timestamp int64        `json:"timestamp"` // unix milliseconds
	Score     Score        `json:"score"`
}

// Clone returns a structurally independent copy of s.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Board = s.Board.Clone()
	out.Dice = Dice{
		Values:   cloneInts(s.Dice.Values),
		Rolled:   s.Dice.Rolled,
		Consumed: cloneInts(s.Dice.Consumed),
	}
	if s.History != nil {
		out.History = append(make([]MoveRecord, 0, len(s.History)+1), s.History...)
	}
	return &out
}

func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}
	return append(make([]int, 0, len(s)), s...)
}

// Winner returns the side that has borne off all its pieces, if any.
func (s *GameState) Winner() (Side, bool) {
	for _, side := range []Side{White, Black} {
		if s.Board.BorneOff(side) == PiecesPerSide {
			return side, true
		}
	}
	return 0, false
}

// GameOver reports whether either side has borne off all its pieces.
func (s *GameState) GameOver() bool {
	_, over := s.Winner()
	return over
}

// ShortID is the first eight characters of the game id, for display.
func (s *GameState) ShortID() string {
	if len(s.GameID) <= 8 {
		return s.GameID
	}
	return s.GameID[:8]
}
