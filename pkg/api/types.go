// Package api serves the rules engine over HTTP/JSON, Server-Sent Events
// and WebSocket. Games travel as tokens; the server keeps no game state
// except in the optional session store.
package api

import (
	"time"

	"github.com/yourusername/bgrules/pkg/engine"
)

// ============================================================================
// Request Types
// ============================================================================

// NewGameRequest is the body of POST /api/games. Variant defaults to the
// server's configured variant.
type NewGameRequest struct {
	Variant string `json:"variant,omitempty" mapstructure:"variant"`
}

// StateRequest carries a game token.
type StateRequest struct {
	State string `json:"state" mapstructure:"state"`
}

// MovesRequest asks for the legal moves, optionally only from one location.
type MovesRequest struct {
	State string           `json:"state" mapstructure:"state"`
	From  *engine.Location `json:"from,omitempty" mapstructure:"from"`
}

// MoveRequest plays one die. PieceID defaults to the top piece at From and
// DieIndex to the lowest unused slot holding Die.
type MoveRequest struct {
	State    string          `json:"state" mapstructure:"state"`
	From     engine.Location `json:"from" mapstructure:"from"`
	To       engine.Location `json:"to" mapstructure:"to"`
	Die      int             `json:"die" mapstructure:"die"`
	DieIndex *int            `json:"dieIndex,omitempty" mapstructure:"dieIndex"`
	PieceID  string          `json:"pieceId,omitempty" mapstructure:"pieceId"`
}

// SessionRequest stores a token under its game id.
type SessionRequest struct {
	State   string `json:"state" mapstructure:"state"`
	Version int64  `json:"version,omitempty" mapstructure:"version"` // required for PUT
}

// SimulateRequest is the body of POST /api/simulate.
type SimulateRequest struct {
	Variant  string `json:"variant,omitempty" mapstructure:"variant"`
	Games    int    `json:"games,omitempty" mapstructure:"games"`
	MaxTurns int    `json:"maxTurns,omitempty" mapstructure:"maxTurns"`
	Seed     int64  `json:"seed,omitempty" mapstructure:"seed"`
	Workers  int    `json:"workers,omitempty" mapstructure:"workers"`
}

// ============================================================================
// Response Types
// ============================================================================

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	Variants []string   `json:"variants"`
	Sessions bool       `json:"sessions"`
	Pool     *PoolStats `json:"pool,omitempty"`
}

// GameResponse returns the new token together with a readable view of it.
type GameResponse struct {
	State    string            `json:"state"`
	Game     *engine.GameState `json:"game"`
	View     GameView          `json:"view"`
	ShareURL string            `json:"shareUrl,omitempty"`
}

// GameView is the derived information a client needs to render a game.
type GameView struct {
	GameID     string       `json:"gameId"`
	ShortID    string       `json:"shortId"`
	Variant    string       `json:"variant"`
	Title      string       `json:"title"`
	Turn       engine.Side  `json:"turn"`
	Dice       []int        `json:"dice"`
	Unused     []int        `json:"unused"`
	Rolled     bool         `json:"rolled"`
	MustPass   bool         `json:"mustPass"`
	GameOver   bool         `json:"gameOver"`
	Winner     *engine.Side `json:"winner,omitempty"`
	Score      engine.Score `json:"score"`
	PipCount   PipCount     `json:"pipCount"`
	PositionID string       `json:"positionId"`
	Legal      []MoveView   `json:"legal"`
	LastMoves  string       `json:"lastMoves,omitempty"`
}

// PipCount is each side's pip count.
type PipCount struct {
	White int `json:"WHITE"`
	Black int `json:"BLACK"`
}

// MoveView is a legal move with its notation and the piece it would move.
type MoveView struct {
	engine.Move
	Notation string `json:"notation"`
	PieceID  string `json:"pieceId"`
}

// MovesResponse is returned by POST /api/games/moves.
type MovesResponse struct {
	Moves    []MoveView  `json:"moves"`
	MustPass bool        `json:"mustPass"`
	Turn     engine.Side `json:"turn"`
}

// SessionResponse describes a stored session.
type SessionResponse struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
	View      GameView  `json:"view"`
}

// SimulateResponse is returned by POST /api/simulate.
type SimulateResponse struct {
	*engine.SimulateResult
	Seed      int64   `json:"seed"`
	ElapsedMS float64 `json:"elapsedMs"`
}
