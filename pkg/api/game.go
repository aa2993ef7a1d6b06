package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/token"
)

// gameOp turns one state into the next.
type gameOp func(*engine.GameState) (*engine.GameState, error)

// loadState decodes an untrusted token and checks the game invariants.
func loadState(tok string) (*engine.GameState, error) {
	if strings.TrimSpace(tok) == "" {
		return nil, errMissingState
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

// play loads tok, runs op and packages the result.
func (h *Handlers) play(tok string, op gameOp) (*GameResponse, error) {
	s, err := loadState(tok)
	if err != nil {
		return nil, err
	}
	next, err := op(s)
	if err != nil {
		return nil, err
	}
	return h.gameResponse(next)
}

func (h *Handlers) newGame(variant string) (*GameResponse, error) {
	if variant == "" {
		variant = h.config.DefaultVariant
	}
	v, err := engine.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	return h.gameResponse(h.engine.NewGame(v))
}

func (h *Handlers) gameResponse(s *engine.GameState) (*GameResponse, error) {
	tok, err := token.Encode(s)
	if err != nil {
		return nil, err
	}
	return &GameResponse{
		State:    tok,
		Game:     s,
		View:     buildView(s),
		ShareURL: h.shareURL(tok),
	}, nil
}

// shareURL is the link that reopens the game in a browser.
func (h *Handlers) shareURL(tok string) string {
	if h.config.PublicURL == "" {
		return ""
	}
	return strings.TrimRight(h.config.PublicURL, "/") + "/?state=" + url.QueryEscape(tok)
}

func buildView(s *engine.GameState) GameView {
	v := GameView{
		GameID:     s.GameID,
		ShortID:    s.ShortID(),
		Variant:    string(s.Variant),
		Title:      s.Variant.Title(),
		Turn:       s.Turn,
		Dice:       s.Dice.Values,
		Unused:     s.Dice.Unused(),
		Rolled:     s.Dice.Rolled,
		MustPass:   engine.MustPass(s),
		GameOver:   s.GameOver(),
		Score:      s.Score,
		PositionID: engine.PositionID(s),
		Legal:      moveViews(s, engine.LegalMoves(s)),
		PipCount: PipCount{
			White: s.Board.PipCount(engine.White),
			Black: s.Board.PipCount(engine.Black),
		},
	}
	if v.Unused == nil {
		v.Unused = []int{}
	}
	if w, ok := s.Winner(); ok {
		v.Winner = &w
	}
	if n := len(s.History); n > 0 {
		last := s.History[n-1].Side
		i := n
		for i > 0 && s.History[i-1].Side == last {
			i--
		}
		v.LastMoves = fmt.Sprintf("%s %s", last, engine.FormatRecords(s.History[i:]))
	}
	return v
}

func moveViews(s *engine.GameState, moves []engine.Move) []MoveView {
	out := make([]MoveView, 0, len(moves))
	for _, m := range moves {
		id, _ := engine.TopPiece(s, m.From)
		out = append(out, MoveView{
			Move:     m,
			Notation: engine.FormatMove(s.Turn, m),
			PieceID:  id,
		})
	}
	return out
}

// moveOp plays req against the state it is applied to.
func moveOp(req MoveRequest) gameOp {
	return func(s *engine.GameState) (*engine.GameState, error) {
		m := engine.Move{From: req.From, To: req.To, Die: req.Die, DieIndex: -1}
		if req.DieIndex != nil {
			m.DieIndex = *req.DieIndex
		}
		id := req.PieceID
		if id == "" {
			id, _ = engine.TopPiece(s, req.From)
		}
		return engine.ApplyMove(s, m, id)
	}
}

func rematchOp(e *engine.Engine) gameOp {
	return func(s *engine.GameState) (*engine.GameState, error) {
		return e.Rematch(s), nil
	}
}
