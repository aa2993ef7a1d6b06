// bgrules - play and inspect backgammon games from the command line.
//
// Games are passed between commands as state tokens, so commands compose
// with pipes:
//
//	bgrules new | bgrules roll | bgrules moves
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/token"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "new":
		err = cmdNew(args)
	case "roll":
		err = cmdRoll(args)
	case "moves":
		err = cmdMoves(args)
	case "move":
		err = cmdMove(args)
	case "pass":
		err = cmdPass(args)
	case "show":
		err = cmdShow(args)
	case "transcript":
		err = cmdTranscript(args)
	case "sim":
		err = cmdSim(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bgrules - Backgammon rules engine

Usage: bgrules <command> [options]

Commands:
  new         Start a game and print its state token
  roll        Roll the dice
  moves       List the legal moves
  move        Play one die
  pass        Forfeit a turn that has no legal move
  show        Draw the board
  transcript  Export the game as a MAT or SGF transcript
  sim         Play random games and report statistics

State-taking commands read the token from -state, or from stdin when
-state is empty. Commands that change the game print the new token.

Use "bgrules <command> -h" for command-specific help.`)
}

// stateFlags registers the flags shared by commands that take a token.
type stateFlags struct {
	state   *string
	verbose *bool
}

func addStateFlags(fs *flag.FlagSet) stateFlags {
	return stateFlags{
		state:   fs.String("state", "", "State token (default: read from stdin)"),
		verbose: fs.Bool("v", false, "Draw the resulting board on stderr"),
	}
}

// load reads and validates the game token.
func (f stateFlags) load() (*engine.GameState, error) {
	tok := *f.state
	if tok == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading token: %w", err)
		}
		tok = strings.TrimSpace(line)
	}
	if tok == "" {
		return nil, errors.New("state token required")
	}
	s, err := token.Decode(tok)
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// emit prints the token for s, and the board when verbose.
func (f stateFlags) emit(s *engine.GameState) error {
	tok, err := token.Encode(s)
	if err != nil {
		return err
	}
	if *f.verbose {
		renderBoard(os.Stderr, s)
	}
	fmt.Println(tok)
	return nil
}

func createEngine(seed int64) *engine.Engine {
	return engine.NewEngine(engine.EngineOptions{Seed: seed})
}

func cmdNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	variant := fs.String("variant", string(engine.Casual), "Variant: casual, gulbara or tapa")
	first := fs.String("first", "", "Side to move first: white or black (default: random)")
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	sf := stateFlags{verbose: fs.Bool("v", false, "Draw the board on stderr")}
	fs.Parse(args)

	v, err := engine.ParseVariant(*variant)
	if err != nil {
		return err
	}

	var s *engine.GameState
	if *first == "" {
		s = createEngine(*seed).NewGame(v)
	} else {
		var side engine.Side
		if err := side.UnmarshalText([]byte(strings.ToUpper(*first))); err != nil {
			return err
		}
		s = engine.NewGame(v, side, uuid.NewString, time.Now())
	}
	return sf.emit(s)
}

func cmdRoll(args []string) error {
	fs := flag.NewFlagSet("roll", flag.ExitOnError)
	sf := addStateFlags(fs)
	dice := fs.String("dice", "", "Fixed dice, e.g. 3,1 or 3-1 (default: random)")
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	fs.Parse(args)

	s, err := sf.load()
	if err != nil {
		return err
	}

	var next *engine.GameState
	if *dice != "" {
		d, err := parseDice(*dice)
		if err != nil {
			return err
		}
		next, err = engine.SetDice(s, d[0], d[1], time.Now())
		if err != nil {
			return err
		}
	} else {
		next, err = createEngine(*seed).RollDice(s)
		if err != nil {
			return err
		}
	}
	if engine.MustPass(next) {
		fmt.Fprintf(os.Stderr, "%s rolled %v and cannot move; pass required\n", next.Turn, next.Dice.Values)
	}
	return sf.emit(next)
}

func parseDice(diceStr string) ([2]int, error) {
	parts := strings.Split(diceStr, ",")
	if len(parts) != 2 {
		parts = strings.Split(diceStr, "-")
	}
	if len(parts) != 2 {
		return [2]int{}, fmt.Errorf("dice should be in format '3,1' or '3-1'")
	}

	d1, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d2, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return [2]int{}, engine.ErrInvalidDice
	}
	return [2]int{d1, d2}, nil
}

func cmdMoves(args []string) error {
	fs := flag.NewFlagSet("moves", flag.ExitOnError)
	sf := addStateFlags(fs)
	from := fs.String("from", "", "Only moves from this location (0-23 or bar)")
	fs.Parse(args)

	s, err := sf.load()
	if err != nil {
		return err
	}
	if !s.Dice.Rolled {
		return engine.ErrNotRolled
	}

	moves := engine.LegalMoves(s)
	if *from != "" {
		loc, err := engine.ParseLocation(*from)
		if err != nil {
			return err
		}
		moves = engine.MovesFrom(moves, loc)
	}

	if len(moves) == 0 {
		fmt.Println("No legal moves (forced to pass)")
		return nil
	}
	fmt.Printf("Legal moves for %s with %s:\n", s.Turn, formatUnused(s))
	for i, m := range moves {
		fmt.Printf("  %2d. %-10s -from %s -to %s -die %d\n",
			i+1, engine.FormatMove(s.Turn, m), m.From, m.To, m.Die)
	}
	return nil
}

func formatUnused(s *engine.GameState) string {
	var parts []string
	for _, i := range s.Dice.Unused() {
		parts = append(parts, strconv.Itoa(s.Dice.Values[i]))
	}
	return strings.Join(parts, "-")
}

func cmdMove(args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	sf := addStateFlags(fs)
	fromFlag := fs.String("from", "", "Source: point index 0-23 or bar")
	toFlag := fs.String("to", "", "Destination: point index 0-23 or off")
	die := fs.Int("die", 0, "Die value to use")
	piece := fs.String("piece", "", "Piece id (default: top piece at -from)")
	fs.Parse(args)

	if *fromFlag == "" || *toFlag == "" || *die == 0 {
		return errors.New("-from, -to and -die are required")
	}
	from, err := engine.ParseLocation(*fromFlag)
	if err != nil {
		return err
	}
	to, err := engine.ParseLocation(*toFlag)
	if err != nil {
		return err
	}

	s, err := sf.load()
	if err != nil {
		return err
	}
	id := *piece
	if id == "" {
		id, _ = engine.TopPiece(s, from)
	}
	next, err := engine.ApplyMove(s, engine.Move{From: from, To: to, Die: *die, DieIndex: -1}, id)
	if err != nil {
		return err
	}
	if w, ok := next.Winner(); ok {
		fmt.Fprintf(os.Stderr, "%s wins\n", w)
	}
	return sf.emit(next)
}

func cmdPass(args []string) error {
	fs := flag.NewFlagSet("pass", flag.ExitOnError)
	sf := addStateFlags(fs)
	fs.Parse(args)

	s, err := sf.load()
	if err != nil {
		return err
	}
	next, err := engine.Pass(s)
	if err != nil {
		return err
	}
	return sf.emit(next)
}

func cmdShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	sf := addStateFlags(fs)
	fs.Parse(args)

	s, err := sf.load()
	if err != nil {
		return err
	}
	renderBoard(os.Stdout, s)
	return nil
}

func cmdTranscript(args []string) error {
	fs := flag.NewFlagSet("transcript", flag.ExitOnError)
	sf := addStateFlags(fs)
	format := fs.String("format", "mat", "Output format: mat or sgf")
	white := fs.String("white", "White", "White player's name")
	black := fs.String("black", "Black", "Black player's name")
	fs.Parse(args)

	s, err := sf.load()
	if err != nil {
		return err
	}
	m := match.FromState(s, *white, *black)
	switch *format {
	case "mat":
		return match.ExportMAT(os.Stdout, m)
	case "sgf":
		return match.ExportSGF(os.Stdout, m)
	}
	return fmt.Errorf("unknown format %q", *format)
}

func cmdSim(args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	variant := fs.String("variant", string(engine.Casual), "Variant: casual, gulbara or tapa")
	games := fs.Int("games", 1000, "Number of games to play")
	maxTurns := fs.Int("max-turns", 1000, "Abandon a game after this many turns")
	workers := fs.Int("workers", 0, "Number of worker goroutines (0 = auto)")
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	progress := fs.Bool("progress", false, "Report progress on stderr")
	fs.Parse(args)

	v, err := engine.ParseVariant(*variant)
	if err != nil {
		return err
	}
	if *seed == 0 {
		*seed = rand.Int63()
	}
	opts := engine.SimulateOptions{
		Variant:  v,
		Games:    *games,
		MaxTurns: *maxTurns,
		Workers:  *workers,
		Seed:     *seed,
	}

	var cb engine.ProgressCallback
	if *progress {
		cb = func(p engine.SimulateProgress) {
			fmt.Fprintf(os.Stderr, "\r%5.1f%% (%d/%d)", p.Percent, p.GamesCompleted, p.GamesTotal)
			if p.GamesCompleted == p.GamesTotal {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	start := time.Now()
	r, err := engine.Simulate(context.Background(), opts, cb)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Simulation (%s, %d games, seed %d, %.1fs):\n", r.Variant, r.Games, *seed, elapsed.Seconds())
	fmt.Printf("  White wins:   %d (%.1f%%)\n", r.WhiteWins, percent(r.WhiteWins, r.Games))
	fmt.Printf("  Black wins:   %d (%.1f%%)\n", r.BlackWins, percent(r.BlackWins, r.Games))
	fmt.Printf("  First mover:  %.1f%%\n", percent(r.FirstMoverWins, r.WhiteWins+r.BlackWins))
	fmt.Printf("  Unfinished:   %d\n", r.Unfinished)
	fmt.Printf("  Turns/game:   %.1f ± %.1f\n", r.MeanTurns, r.StdDevTurns)
	fmt.Printf("  Moves/game:   %.1f\n", r.MeanMoves)
	fmt.Printf("  Hits/game:    %.2f\n", r.MeanHits)
	fmt.Printf("  Passes/game:  %.2f\n", r.MeanPasses)
	fmt.Printf("  Loser pips:   %.1f\n", r.MeanLoserPips)
	return nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
