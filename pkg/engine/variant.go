package engine

import (
	"fmt"
	"time"
)

// Variant selects the starting layout of a game.
type Variant string

const (
	Casual  Variant = "casual"
	GulBara Variant = "gulbara"
	Tapa    Variant = "tapa"
)

// Variants lists every supported variant in display order.
var Variants = []Variant{Casual, GulBara, Tapa}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownVariant, s)
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown names.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Title is the human-readable variant name.
func (v Variant) Title() string {
	switch v {
	case GulBara:
		return "Gul Bara"
	case Tapa:
		return "Tapa"
	}
	return "Casual Backgammon"
}

// Description is a one-line summary of the variant.
func (v Variant) Description() string {
	switch v {
	case GulBara:
		return "Also known as Rosespring or Crazy Narde. All pieces start stacked on the starting point."
	case Tapa:
		return "All pieces start stacked on the starting point."
	}
	return "Standard backgammon rules without the doubling cube."
}

// layout is a point -> piece count table for one side.
type layout map[int]int

// layouts returns the starting point counts for White and Black.
//
// Gul Bara and Tapa are played here with the casual movement rules; only
// their starting stacks differ.
func (v Variant) layouts() (white, black layout) {
	switch v {
	case GulBara, Tapa:
		return layout{0: 15}, layout{23: 15}
	}
	return layout{0: 2, 11: 5, 16: 3, 18: 5}, layout{23: 2, 12: 5, 7: 3, 5: 5}
}

// IDGenerator returns a fresh identifier on every call.
type IDGenerator func() string

// NewGame builds the initial state for variant with first to move.
// newID supplies the game id and every piece id.
func NewGame(v Variant, first Side, newID IDGenerator, at time.Time) *GameState {
	b := NewBoard()
	white, black := v.layouts()
	for side, lay := range [2]layout{White: white, Black: black} {
		for p := 0; p < NumPoints; p++ {
			for i := 0; i < lay[p]; i++ {
				b.Points[p] = append(b.Points[p], Piece{ID: pieceID(newID), Owner: Side(side)})
			}
		}
	}
	return &GameState{
		Variant:   v,
		Board:     b,
		Turn:      first,
		Dice:      Dice{Values: []int{}, Consumed: []int{}},
		History:   []MoveRecord{},
		GameID:    newID(),
		Timestamp: at.UnixMilli(),
	}
}

// pieceID shortens a generated id to eight characters, which is plenty to
// tell 30 pieces apart.
func pieceID(newID IDGenerator) string {
	id := newID()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
