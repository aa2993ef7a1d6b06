package engine

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SimulateOptions controls a self-play simulation.
type SimulateOptions struct {
	Variant  Variant // defaults to Casual
	Games    int     // number of games to play (default 100)
	MaxTurns int     // per-game turn cap, 0 = 1000
	Seed     int64   // RNG seed (0 = random)
	Workers  int     // parallel workers (0 = GOMAXPROCS)
}

// SimulateProgress is reported as games finish.
type SimulateProgress struct {
	GamesCompleted int     `json:"gamesCompleted"`
	GamesTotal     int     `json:"gamesTotal"`
	Percent        float64 `json:"percent"`
	WhiteWins      int     `json:"whiteWins"`
	BlackWins      int     `json:"blackWins"`
}

// ProgressCallback receives simulation progress.
type ProgressCallback func(SimulateProgress)

// SimulateResult summarises a simulation.
type SimulateResult struct {
	Variant    Variant `json:"variant"`
	Games      int     `json:"games"`
	WhiteWins  int     `json:"whiteWins"`
	BlackWins  int     `json:"blackWins"`
	Unfinished int     `json:"unfinished"`

	MeanTurns      float64 `json:"meanTurns"`
	StdDevTurns    float64 `json:"stdDevTurns"`
	MeanMoves      float64 `json:"meanMoves"`
	MeanHits       float64 `json:"meanHits"`
	MeanPasses     float64 `json:"meanPasses"`
	MeanLoserPips  float64 `json:"meanLoserPips"`
	TotalMoves     int     `json:"totalMoves"`
	FirstMoverWins int     `json:"firstMoverWins"`
}

// gameStats is the outcome of one simulated game.
type gameStats struct {
	winner    Side
	finished  bool
	firstWon  bool
	turns     int
	moves     int
	hits      int
	passes    int
	loserPips int
}

// DefaultSimulateOptions returns the defaults used by the CLI and server.
func DefaultSimulateOptions() SimulateOptions {
	return SimulateOptions{
		Variant:  Casual,
		Games:    100,
		MaxTurns: 1000,
	}
}

func (o *SimulateOptions) normalize() {
	if o.Variant == "" {
		o.Variant = Casual
	}
	if o.Games <= 0 {
		o.Games = 100
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = 1000
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Workers > o.Games {
		o.Workers = o.Games
	}
	if o.Seed == 0 {
		o.Seed = rand.Int63()
	}
}

// Simulate plays opts.Games games between two players that choose
// uniformly among the legal moves, checking Validate after every step.
// The first invariant violation aborts the run and is returned.
// progress may be nil.
func Simulate(ctx context.Context, opts SimulateOptions, progress ProgressCallback) (*SimulateResult, error) {
	opts.normalize()
	if _, err := ParseVariant(string(opts.Variant)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	perWorker := opts.Games / opts.Workers
	extra := opts.Games % opts.Workers

	stats := make([][]gameStats, opts.Workers)
	done := make(chan gameStats, opts.Workers*4)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i := 0; i < opts.Workers; i++ {
		n := perWorker
		if i < extra {
			n++
		}
		seed := opts.Seed + int64(i)*1000000
		wg.Add(1)
		go func(slot, games int, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			ids := sequentialIDs(fmt.Sprintf("w%d", slot))
			for g := 0; g < games; g++ {
				if ctx.Err() != nil {
					return
				}
				gs, err := playGame(opts.Variant, rng, ids, opts.MaxTurns)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					cancel()
					return
				}
				stats[slot] = append(stats[slot], gs)
				select {
				case done <- gs:
				case <-ctx.Done():
					return
				}
			}
		}(i, n, seed)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	batch := opts.Games / 20
	if batch < 1 {
		batch = 1
	}
	var p SimulateProgress
	p.GamesTotal = opts.Games
	for gs := range done {
		p.GamesCompleted++
		if gs.finished {
			if gs.winner == White {
				p.WhiteWins++
			} else {
				p.BlackWins++
			}
		}
		if progress != nil && (p.GamesCompleted%batch == 0 || p.GamesCompleted == opts.Games) {
			p.Percent = 100 * float64(p.GamesCompleted) / float64(opts.Games)
			progress(p)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && p.GamesCompleted < opts.Games {
		return nil, err
	}

	var all []gameStats
	for _, s := range stats {
		all = append(all, s...)
	}
	return summarize(opts.Variant, all), nil
}

func summarize(v Variant, games []gameStats) *SimulateResult {
	res := &SimulateResult{Variant: v, Games: len(games)}
	if len(games) == 0 {
		return res
	}
	turns := make([]float64, len(games))
	moves := make([]float64, len(games))
	hits := make([]float64, len(games))
	passes := make([]float64, len(games))
	var loserPips []float64
	for i, g := range games {
		turns[i] = float64(g.turns)
		moves[i] = float64(g.moves)
		hits[i] = float64(g.hits)
		passes[i] = float64(g.passes)
		if !g.finished {
			res.Unfinished++
			continue
		}
		if g.winner == White {
			res.WhiteWins++
		} else {
			res.BlackWins++
		}
		if g.firstWon {
			res.FirstMoverWins++
		}
		loserPips = append(loserPips, float64(g.loserPips))
	}
	res.MeanTurns, res.StdDevTurns = stat.MeanStdDev(turns, nil)
	if len(games) == 1 {
		res.StdDevTurns = 0
	}
	res.MeanMoves = stat.Mean(moves, nil)
	res.MeanHits = stat.Mean(hits, nil)
	res.MeanPasses = stat.Mean(passes, nil)
	res.TotalMoves = int(floats.Sum(moves))
	if len(loserPips) > 0 {
		res.MeanLoserPips = stat.Mean(loserPips, nil)
	}
	return res
}

// playGame plays one random game to completion or maxTurns.
func playGame(v Variant, rng *rand.Rand, ids IDGenerator, maxTurns int) (gameStats, error) {
	var gs gameStats
	at := time.Unix(0, 0)
	first := Side(rng.Intn(2))
	s := NewGame(v, first, ids, at)
	if err := Validate(s); err != nil {
		return gs, err
	}

	for gs.turns < maxTurns && !s.GameOver() {
		gs.turns++
		next, err := RollDice(s, rng, at)
		if err != nil {
			return gs, err
		}
		s = next
		if MustPass(s) {
			gs.passes++
			if s, err = Pass(s); err != nil {
				return gs, err
			}
			continue
		}
		for s.Dice.Rolled {
			moves := LegalMoves(s)
			m := moves[rng.Intn(len(moves))]
			id, _ := TopPiece(s, m.From)
			if s, err = ApplyMove(s, m, id); err != nil {
				return gs, err
			}
			gs.moves++
			if m.Action == ActionCapture {
				gs.hits++
			}
			if err := Validate(s); err != nil {
				return gs, fmt.Errorf("after %s: %w", m, err)
			}
		}
	}

	if w, ok := s.Winner(); ok {
		gs.finished = true
		gs.winner = w
		gs.firstWon = w == first
		gs.loserPips = s.Board.PipCount(w.Opponent())
	}
	return gs, nil
}

// sequentialIDs returns a generator of ids unique within its prefix, whose
// first eight characters also differ, for piece ids.
func sequentialIDs(prefix string) IDGenerator {
	var n uint32
	return func() string {
		n++
		return fmt.Sprintf("%08x-%s", n, prefix)
	}
}
