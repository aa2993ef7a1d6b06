package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/session"
	"github.com/yourusername/bgrules/pkg/token"
)

// HandlerConfig holds the settings the handlers need.
type HandlerConfig struct {
	Version        string
	DefaultVariant string // variant for POST /api/games without one
	PublicURL      string // base of share links; empty disables them
	MaxSimGames    int    // upper bound on games per simulation
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	engine  *engine.Engine
	store   session.Store // nil disables the session endpoints
	config  HandlerConfig
	pool    *WorkerPool
	logger  *zap.Logger
	origins []string // WebSocket origins; empty allows all
}

// NewHandlers creates a Handlers instance without a worker pool.
func NewHandlers(e *engine.Engine, store session.Store, cfg HandlerConfig, logger *zap.Logger) *Handlers {
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = string(engine.Casual)
	}
	if cfg.MaxSimGames <= 0 {
		cfg.MaxSimGames = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		engine: e,
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// NewHandlersWithPool creates a Handlers instance that limits concurrency
// through pool.
func NewHandlersWithPool(e *engine.Engine, store session.Store, cfg HandlerConfig, logger *zap.Logger, pool *WorkerPool) *Handlers {
	h := NewHandlers(e, store, cfg, logger)
	h.pool = pool
	return h
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// fail classifies err and writes it.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "internal error", code)
		return
	}
	writeError(w, status, err.Error(), code)
}

// decodeBody decodes the JSON body into v. An empty body leaves v as is
// when allowEmpty is set.
func decodeBody(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// fast wraps next so it runs inside a fast pool slot.
func (h *Handlers) fast(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.pool != nil {
			if err := h.pool.AcquireFast(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "server busy", CodeServerBusy)
				return
			}
			defer h.pool.ReleaseFast()
		}
		next(w, r)
	}
}

// slow is fast for simulations.
func (h *Handlers) slow(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.pool != nil {
			if err := h.pool.AcquireSlow(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "server busy", CodeServerBusy)
				return
			}
			defer h.pool.ReleaseSlow()
		}
		next(w, r)
	}
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  h.config.Version,
		Sessions: h.store != nil,
	}
	for _, v := range engine.Variants {
		resp.Variants = append(resp.Variants, string(v))
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// NewGame handles POST /api/games
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	resp, err := h.newGame(req.Variant)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("game created", zap.String("game", resp.Game.GameID), zap.String("variant", resp.View.Variant))
	writeJSON(w, http.StatusCreated, resp)
}

// stateHandler builds a handler that applies op to the token in the body.
func (h *Handlers) stateHandler(op func() gameOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StateRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
			return
		}
		resp, err := h.play(req.State, op())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Roll handles POST /api/games/roll
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) {
	h.stateHandler(func() gameOp { return h.engine.RollDice })(w, r)
}

// Pass handles POST /api/games/pass
func (h *Handlers) Pass(w http.ResponseWriter, r *http.Request) {
	h.stateHandler(func() gameOp { return engine.Pass })(w, r)
}

// Rematch handles POST /api/games/rematch
func (h *Handlers) Rematch(w http.ResponseWriter, r *http.Request) {
	h.stateHandler(func() gameOp { return rematchOp(h.engine) })(w, r)
}

// Moves handles POST /api/games/moves
func (h *Handlers) Moves(w http.ResponseWriter, r *http.Request) {
	var req MovesRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	s, err := loadState(req.State)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movesResponse(s, req.From))
}

func movesResponse(s *engine.GameState, from *engine.Location) MovesResponse {
	moves := engine.LegalMoves(s)
	if from != nil {
		moves = engine.MovesFrom(moves, *from)
	}
	return MovesResponse{
		Moves:    moveViews(s, moves),
		MustPass: engine.MustPass(s),
		Turn:     s.Turn,
	}
}

// Move handles POST /api/games/move
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	resp, err := h.play(req.State, moveOp(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetState handles GET /api/games/state?state=<token>, the target of
// share links.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	resp, err := h.play(r.URL.Query().Get("state"), func(s *engine.GameState) (*engine.GameState, error) {
		return s, nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transcript handles GET /api/games/transcript?state=<token>&format=mat|sgf
func (h *Handlers) Transcript(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s, err := loadState(q.Get("state"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	white, black := q.Get("white"), q.Get("black")
	if white == "" {
		white = "White"
	}
	if black == "" {
		black = "Black"
	}
	m := match.FromState(s, white, black)

	switch format := q.Get("format"); format {
	case "", "mat":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = match.ExportMAT(w, m)
	case "sgf":
		w.Header().Set("Content-Type", "application/x-go-sgf")
		err = match.ExportSGF(w, m)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format), CodeBadRequest)
		return
	}
	if err != nil {
		h.logger.Warn("transcript write failed", zap.Error(err))
	}
}

// CreateSession handles POST /api/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessionsEnabled(w) {
		return
	}
	var req SessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	s, tok, err := canonical(req.State)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.store.Create(r.Context(), s.GameID, tok)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(sess, s))
}

// GetSession handles GET /api/sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessionsEnabled(w) {
		return
	}
	sess, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := loadState(sess.Token)
	if err != nil {
		h.fail(w, r, fmt.Errorf("stored session %s: %w", sess.ID, err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess, s))
}

// UpdateSession handles PUT /api/sessions/{id}. The body's version must
// match the stored one.
func (h *Handlers) UpdateSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessionsEnabled(w) {
		return
	}
	var req SessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	id := r.PathValue("id")
	s, tok, err := canonical(req.State)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s.GameID != id {
		h.fail(w, r, fmt.Errorf("%w: token is for game %s", errBadRequest, s.GameID))
		return
	}
	sess, err := h.store.Update(r.Context(), id, tok, req.Version)
	if err != nil {
		if errors.Is(err, session.ErrConflict) {
			h.logger.Info("stale session write", zap.String("game", id), zap.Int64("version", req.Version))
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess, s))
}

func (h *Handlers) sessionsEnabled(w http.ResponseWriter) bool {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "sessions are disabled", CodeNotFound)
		return false
	}
	return true
}

// canonical validates tok and re-encodes it.
func canonical(tok string) (*engine.GameState, string, error) {
	s, err := loadState(tok)
	if err != nil {
		return nil, "", err
	}
	out, err := token.Encode(s)
	if err != nil {
		return nil, "", err
	}
	return s, out, nil
}

func sessionResponse(sess *session.Session, s *engine.GameState) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		Version:   sess.Version,
		State:     sess.Token,
		UpdatedAt: sess.UpdatedAt,
		View:      buildView(s),
	}
}

// simulateOptions validates req against the server limits.
func (h *Handlers) simulateOptions(req SimulateRequest) (engine.SimulateOptions, error) {
	opts := engine.DefaultSimulateOptions()
	if req.Variant != "" {
		v, err := engine.ParseVariant(req.Variant)
		if err != nil {
			return opts, err
		}
		opts.Variant = v
	}
	if req.Games > h.config.MaxSimGames {
		return opts, fmt.Errorf("%w: at most %d games", errBadRequest, h.config.MaxSimGames)
	}
	if req.Games > 0 {
		opts.Games = req.Games
	}
	if req.MaxTurns > 0 {
		opts.MaxTurns = req.MaxTurns
	}
	opts.Workers = req.Workers
	opts.Seed = req.Seed
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	return opts, nil
}

// Simulate handles POST /api/simulate
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	opts, err := h.simulateOptions(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	start := time.Now()
	result, err := engine.Simulate(r.Context(), opts, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("simulation finished",
		zap.String("variant", string(opts.Variant)),
		zap.Int("games", result.Games),
		zap.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, SimulateResponse{
		SimulateResult: result,
		Seed:           opts.Seed,
		ElapsedMS:      float64(time.Since(start).Microseconds()) / 1000,
	})
}
