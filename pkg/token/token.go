// Package token converts a complete game state to and from a compact,
// URL-safe string so a game can travel in a link.
//
// A token is the JSON form of engine.GameState, DEFLATE-compressed and
// base64url-encoded without padding.
package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/yourusername/bgrules/pkg/engine"
)

// MaxPayload caps the inflated size of a token.
const MaxPayload = 1 << 20

var (
	// ErrDecode is returned when a token is not base64url or does not inflate.
	ErrDecode = errors.New("token decode failed")
	// ErrParse is returned when the inflated payload is not a game state.
	ErrParse = errors.New("token parse failed")
)

// Encode serialises s. The same state always yields the same token.
func Encode(s *engine.GameState) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode restores a state from a token. It checks structure only; see
// engine.Validate for the game invariants.
func Decode(tok string) (*engine.GameState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(tok), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty token", ErrDecode)
	}

	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, MaxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) > MaxPayload {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrDecode, MaxPayload)
	}

	var s engine.GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := checkOwners(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := checkStructure(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &s, nil
}

// ownedPiece sees only whether a piece names its owner; engine.Side's zero
// value is White, so an absent owner cannot be told apart after decoding.
type ownedPiece struct {
	Owner *json.RawMessage `json:"owner"`
}

func checkOwners(data []byte) error {
	var shadow struct {
		Board struct {
			Points  [][]ownedPiece          `json:"points"`
			Bar     map[string][]ownedPiece `json:"bar"`
			Outside map[string][]ownedPiece `json:"outside"`
		} `json:"board"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	stacks := shadow.Board.Points
	for _, m := range []map[string][]ownedPiece{shadow.Board.Bar, shadow.Board.Outside} {
		for _, st := range m {
			stacks = append(stacks, st)
		}
	}
	for _, st := range stacks {
		for _, pc := range st {
			if pc.Owner == nil {
				return errors.New("piece without owner")
			}
		}
	}
	return nil
}

// checkStructure rejects payloads that decode as JSON but cannot be a
// state, and allocates any container the payload left null.
func checkStructure(s *engine.GameState) error {
	if s.Variant == "" {
		return errors.New("missing variant")
	}
	if s.GameID == "" {
		return errors.New("missing game id")
	}
	if len(s.Board.Points) != engine.NumPoints {
		return fmt.Errorf("board has %d points, want %d", len(s.Board.Points), engine.NumPoints)
	}
	for i := range s.Board.Points {
		if err := checkStack(&s.Board.Points[i]); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	for _, st := range []*engine.Stack{&s.Board.Bar.White, &s.Board.Bar.Black, &s.Board.Outside.White, &s.Board.Outside.Black} {
		if err := checkStack(st); err != nil {
			return err
		}
	}

	d := &s.Dice
	if d.Values == nil {
		d.Values = []int{}
	}
	if d.Consumed == nil {
		d.Consumed = []int{}
	}
	if !d.Rolled && len(d.Values) > 0 {
		return errors.New("dice values without a roll")
	}
	switch len(d.Values) {
	case 0, 2, 4:
	default:
		return fmt.Errorf("%d dice values", len(d.Values))
	}
	for _, v := range d.Values {
		if v < 1 || v > 6 {
			return fmt.Errorf("die value %d", v)
		}
	}
	seen := make(map[int]bool, len(d.Consumed))
	for _, i := range d.Consumed {
		if i < 0 || i >= len(d.Values) || seen[i] {
			return fmt.Errorf("consumed slot %d", i)
		}
		seen[i] = true
	}

	if s.History == nil {
		s.History = []engine.MoveRecord{}
	}
	for i, rec := range s.History {
		if rec.PieceID == "" || rec.Die < 1 || rec.Die > 6 {
			return fmt.Errorf("history entry %d malformed", i)
		}
	}
	if s.Score.White < 0 || s.Score.Black < 0 {
		return errors.New("negative score")
	}
	return nil
}

func checkStack(st *engine.Stack) error {
	if *st == nil {
		*st = engine.Stack{}
	}
	for _, pc := range *st {
		if pc.ID == "" {
			return errors.New("piece without id")
		}
	}
	return nil
}
