package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EngineOptions configures an Engine. Zero values pick sensible defaults.
type EngineOptions struct {
	Seed  int64            // RNG seed (0 = random)
	Clock func() time.Time // defaults to time.Now
	IDs   IDGenerator      // defaults to uuid.NewString
}

// Engine owns the random source and clock used for new games and dice.
// It is safe for concurrent use. The pure rules (LegalMoves, ApplyMove,
// Pass) are package functions and need no Engine.
type Engine struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock func() time.Time
	ids   IDGenerator
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = uuid.NewString
	}
	return &Engine{
		rng:   rand.New(rand.NewSource(opts.Seed)),
		clock: opts.Clock,
		ids:   opts.IDs,
	}
}

// NewGame starts a game of variant with a randomly chosen first player.
func (e *Engine) NewGame(v Variant) *GameState {
	e.mu.Lock()
	first := Side(e.rng.Intn(2))
	e.mu.Unlock()
	return NewGame(v, first, e.ids, e.clock())
}

// Rematch starts a fresh game of the same variant, keeping the score.
func (e *Engine) Rematch(prev *GameState) *GameState {
	next := e.NewGame(prev.Variant)
	next.Score = prev.Score
	return next
}

// RollDice rolls for the side to move.
func (e *Engine) RollDice(s *GameState) (*GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return RollDice(s, e.rng, e.clock())
}
