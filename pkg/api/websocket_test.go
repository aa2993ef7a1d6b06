package api

import (
	"encoding/json"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/bgrules/pkg/engine"
)

func dialTestServer(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// exchange sends one message and reads the reply, decoding its payload
// into out when out is non-nil.
func exchange(t *testing.T, conn *websocket.Conn, msg interface{}, out interface{}) WSResponse {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var raw struct {
		WSResponse
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&raw); err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if out != nil && len(raw.Payload) > 0 {
		if err := json.Unmarshal(raw.Payload, out); err != nil {
			t.Fatalf("payload decode: %v", err)
		}
	}
	return raw.WSResponse
}

func TestWebSocketPing(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, nil))

	resp := exchange(t, conn, map[string]string{"type": "ping", "id": "p1"}, nil)
	if resp.Type != "pong" || resp.ID != "p1" {
		t.Errorf("resp = %+v, want pong p1", resp)
	}
}

func TestWebSocketPlay(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, nil))

	var game GameResponse
	resp := exchange(t, conn, map[string]interface{}{
		"type":    "new",
		"id":      "1",
		"payload": map[string]string{"variant": "casual"},
	}, &game)
	if resp.Type != "result" || game.State == "" {
		t.Fatalf("new: %+v", resp)
	}

	_, tok := rolledState(t)

	// Locations may arrive as numbers or strings.
	resp = exchange(t, conn, map[string]interface{}{
		"type": "move",
		"id":   "2",
		"payload": map[string]interface{}{
			"state": tok,
			"from":  "0",
			"to":    3,
			"die":   3,
		},
	}, &game)
	if resp.Type != "result" {
		t.Fatalf("move: %+v", resp)
	}
	if got := len(game.Game.Board.Points[3]); got != 1 {
		t.Errorf("point 3 has %d pieces, want 1", got)
	}

	var moves MovesResponse
	resp = exchange(t, conn, map[string]interface{}{
		"type":    "moves",
		"id":      "3",
		"payload": map[string]interface{}{"state": game.State, "from": 3},
	}, &moves)
	if resp.Type != "result" {
		t.Fatalf("moves: %+v", resp)
	}
	for _, m := range moves.Moves {
		if m.From != engine.PointLocation(3) || m.Die != 1 {
			t.Errorf("unexpected move %+v", m.Move)
		}
	}

	resp = exchange(t, conn, map[string]interface{}{
		"type":    "roll",
		"id":      "4",
		"payload": map[string]string{"state": game.State},
	}, nil)
	if resp.Type != "error" || resp.Code != CodeAlreadyRolled {
		t.Errorf("roll mid-turn: %+v", resp)
	}
}

func TestWebSocketErrors(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, nil))

	tests := []struct {
		name string
		msg  interface{}
		code string
	}{
		{"unknown type", map[string]string{"type": "resign", "id": "a"}, CodeBadRequest},
		{"bad location", map[string]interface{}{
			"type":    "move",
			"id":      "b",
			"payload": map[string]interface{}{"state": "x", "from": "moon"},
		}, CodeInvalidJSON},
		{"payload not an object", map[string]interface{}{"type": "state", "id": "c", "payload": []int{1}}, CodeInvalidJSON},
		{"missing state", map[string]interface{}{"type": "state", "id": "d", "payload": map[string]string{}}, CodeMissingState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := exchange(t, conn, tt.msg, nil)
			if resp.Type != "error" || resp.Code != tt.code {
				t.Errorf("resp = %+v, want error %s", resp, tt.code)
			}
		})
	}
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	srv := newTestServer(t, func(c *ServerConfig) { c.AllowedOrigins = []string{"https://bg.example.com"} })
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, header); err == nil {
		t.Error("Expected the handshake to fail for a foreign origin")
	}
}

func TestDecodePayload(t *testing.T) {
	idx := 1
	tests := []struct {
		name    string
		raw     string
		want    MoveRequest
		wantErr bool
	}{
		{
			name: "numbers",
			raw:  `{"state":"t","from":12,"to":9,"die":3,"dieIndex":1}`,
			want: MoveRequest{State: "t", From: engine.PointLocation(12), To: engine.PointLocation(9), Die: 3, DieIndex: &idx},
		},
		{
			name: "bar and off",
			raw:  `{"from":"bar","to":"off","die":6,"pieceId":"abc"}`,
			want: MoveRequest{From: engine.BarLocation, To: engine.OffLocation, Die: 6, PieceID: "abc"},
		},
		{name: "point out of range", raw: `{"from":24}`, wantErr: true},
		{name: "not json", raw: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got MoveRequest
			err := decodePayload(json.RawMessage(tt.raw), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
