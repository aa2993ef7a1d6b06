package main

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/token"
)

const version = "0.1.0"

var (
	globalEngine *engine.Engine
	engineMutex  sync.RWMutex
)

var errNotInitialized = errors.New("engine not initialized")

func initEngine(seed int64) {
	engineMutex.Lock()
	defer engineMutex.Unlock()
	globalEngine = engine.NewEngine(engine.EngineOptions{Seed: seed})
}

func shutdownEngine() {
	engineMutex.Lock()
	defer engineMutex.Unlock()
	globalEngine = nil
}

func currentEngine() (*engine.Engine, error) {
	engineMutex.RLock()
	defer engineMutex.RUnlock()
	if globalEngine == nil {
		return nil, errNotInitialized
	}
	return globalEngine, nil
}

// load decodes and validates a token from the caller.
func load(tok string) (*engine.GameState, error) {
	s, err := token.Decode(tok)
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func newGame(variant string) (string, error) {
	eng, err := currentEngine()
	if err != nil {
		return "", err
	}
	if variant == "" {
		variant = string(engine.Casual)
	}
	v, err := engine.ParseVariant(variant)
	if err != nil {
		return "", err
	}
	return token.Encode(eng.NewGame(v))
}

func roll(tok string) (string, error) {
	eng, err := currentEngine()
	if err != nil {
		return "", err
	}
	s, err := load(tok)
	if err != nil {
		return "", err
	}
	next, err := eng.RollDice(s)
	if err != nil {
		return "", err
	}
	return token.Encode(next)
}

// moveJSON is one legal move as reported to C callers.
type moveJSON struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Die      int    `json:"die"`
	DieIndex int    `json:"dieIndex"`
	Action   string `json:"action"`
	Notation string `json:"notation"`
	PieceID  string `json:"pieceId"`
}

func legalMoves(tok string) (string, error) {
	s, err := load(tok)
	if err != nil {
		return "", err
	}
	moves := engine.LegalMoves(s)
	out := make([]moveJSON, 0, len(moves))
	for _, m := range moves {
		id, _ := engine.TopPiece(s, m.From)
		out = append(out, moveJSON{
			From:     m.From.String(),
			To:       m.To.String(),
			Die:      m.Die,
			DieIndex: m.DieIndex,
			Action:   m.Action.String(),
			Notation: engine.FormatMove(s.Turn, m),
			PieceID:  id,
		})
	}
	b, err := json.Marshal(out)
	return string(b), err
}

func applyMove(tok, from, to string, die int, pieceID string) (string, error) {
	s, err := load(tok)
	if err != nil {
		return "", err
	}
	f, err := engine.ParseLocation(from)
	if err != nil {
		return "", err
	}
	t, err := engine.ParseLocation(to)
	if err != nil {
		return "", err
	}
	if pieceID == "" {
		pieceID, _ = engine.TopPiece(s, f)
	}
	next, err := engine.ApplyMove(s, engine.Move{From: f, To: t, Die: die, DieIndex: -1}, pieceID)
	if err != nil {
		return "", err
	}
	return token.Encode(next)
}

func pass(tok string) (string, error) {
	s, err := load(tok)
	if err != nil {
		return "", err
	}
	next, err := engine.Pass(s)
	if err != nil {
		return "", err
	}
	return token.Encode(next)
}

// summary is the state overview returned by bgrules_describe.
type summary struct {
	GameID     string `json:"gameId"`
	Variant    string `json:"variant"`
	Turn       string `json:"turn"`
	Dice       []int  `json:"dice"`
	Unused     []int  `json:"unused"`
	MustPass   bool   `json:"mustPass"`
	Winner     string `json:"winner,omitempty"`
	PipWhite   int    `json:"pipWhite"`
	PipBlack   int    `json:"pipBlack"`
	PositionID string `json:"positionId"`
}

func describe(tok string) (string, error) {
	s, err := load(tok)
	if err != nil {
		return "", err
	}
	sum := summary{
		GameID:     s.GameID,
		Variant:    string(s.Variant),
		Turn:       s.Turn.String(),
		Dice:       s.Dice.Values,
		Unused:     s.Dice.Unused(),
		MustPass:   engine.MustPass(s),
		PipWhite:   s.Board.PipCount(engine.White),
		PipBlack:   s.Board.PipCount(engine.Black),
		PositionID: engine.PositionID(s),
	}
	if w, ok := s.Winner(); ok {
		sum.Winner = w.String()
	}
	b, err := json.Marshal(sum)
	return string(b), err
}
