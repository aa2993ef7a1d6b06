package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/engine"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 1 << 20
)

// WSMessage is a client request.
//
// Types: "new" (NewGameRequest), "roll", "pass", "rematch" and "state"
// (StateRequest), "moves" (MovesRequest), "move" (MoveRequest) and "ping".
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`      // echoed in the response
	Payload json.RawMessage `json:"payload"` // type-specific payload
}

// WSResponse is a server reply.
type WSResponse struct {
	Type    string      `json:"type"` // "result", "error" or "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	logger   *zap.Logger
}

func (h *Handlers) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(h.origins, origin)
		},
	}
}

// WebSocket handles /api/ws. Each message carries a token and gets the
// same response as the matching HTTP endpoint.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &WSClient{
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 64),
		logger:   h.logger.With(zap.String("remote", r.RemoteAddr)),
	}
	client.logger.Debug("websocket connected")
	go client.writePump()
	client.readPump(r.Context())
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) readPump(ctx context.Context) {
	defer close(c.sendChan)
	c.conn.SetReadLimit(wsMaxMessage)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("websocket closed", zap.Error(err))
			}
			return
		}
		c.sendChan <- c.handleMessage(ctx, msg)
	}
}

func (c *WSClient) handleMessage(ctx context.Context, msg WSMessage) WSResponse {
	if msg.Type == "ping" {
		return WSResponse{Type: "pong", ID: msg.ID}
	}
	if pool := c.handlers.pool; pool != nil {
		if err := pool.AcquireFast(ctx); err != nil {
			return WSResponse{Type: "error", ID: msg.ID, Error: "server busy", Code: CodeServerBusy}
		}
		defer pool.ReleaseFast()
	}

	payload, err := c.dispatch(msg)
	if err != nil {
		var pe *payloadError
		if errors.As(err, &pe) {
			return WSResponse{Type: "error", ID: msg.ID, Error: err.Error(), Code: CodeInvalidJSON}
		}
		status, code := classify(err)
		text := err.Error()
		if status >= http.StatusInternalServerError {
			c.logger.Error("websocket request failed", zap.String("type", msg.Type), zap.Error(err))
			text = "internal error"
		}
		return WSResponse{Type: "error", ID: msg.ID, Error: text, Code: code}
	}
	return WSResponse{Type: "result", ID: msg.ID, Payload: payload}
}

func (c *WSClient) dispatch(msg WSMessage) (interface{}, error) {
	h := c.handlers
	switch msg.Type {
	case "new":
		var req NewGameRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		return h.newGame(req.Variant)
	case "roll", "pass", "rematch", "state":
		var req StateRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		return h.play(req.State, c.stateOp(msg.Type))
	case "moves":
		var req MovesRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		s, err := loadState(req.State)
		if err != nil {
			return nil, err
		}
		return movesResponse(s, req.From), nil
	case "move":
		var req MoveRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		return h.play(req.State, moveOp(req))
	}
	return nil, fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
}

func (c *WSClient) stateOp(kind string) gameOp {
	switch kind {
	case "roll":
		return c.handlers.engine.RollDice
	case "pass":
		return engine.Pass
	case "rematch":
		return rematchOp(c.handlers.engine)
	}
	return func(s *engine.GameState) (*engine.GameState, error) { return s, nil }
}

// payloadError marks a payload that could not be decoded.
type payloadError struct{ err error }

func (e *payloadError) Error() string { return "invalid payload: " + e.err.Error() }
func (e *payloadError) Unwrap() error { return e.err }

// decodePayload decodes a loosely typed JSON payload into out. Locations
// may be sent as point numbers, numeric strings, "bar" or "off".
func decodePayload(raw json.RawMessage, out interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return &payloadError{err}
	}
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: locationHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	if err := d.Decode(fields); err != nil {
		return &payloadError{err}
	}
	return nil
}

var locationType = reflect.TypeOf(engine.Location{})

func locationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != locationType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return engine.ParseLocation(v)
	case json.Number:
		return engine.ParseLocation(v.String())
	case float64:
		return engine.ParseLocation(fmt.Sprint(int(v)))
	}
	return data, nil
}
