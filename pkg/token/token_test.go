package token

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/yourusername/bgrules/pkg/engine"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ids() engine.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%08x-tok", n)
	}
}

func midGame(t *testing.T) *engine.GameState {
	t.Helper()
	s := engine.NewGame(engine.Casual, engine.White, ids(), epoch)
	steps := []struct {
		d1, d2 int
		moves  [][3]int // from, to, die
	}{
		{3, 5, [][3]int{{0, 3, 3}, {11, 16, 5}}},
		{4, 1, [][3]int{{7, 3, 4}}},
	}
	for _, st := range steps {
		var err error
		if s, err = engine.SetDice(s, st.d1, st.d2, epoch); err != nil {
			t.Fatal(err)
		}
		for _, mv := range st.moves {
			from, to := engine.PointLocation(mv[0]), engine.PointLocation(mv[1])
			id, _ := engine.TopPiece(s, from)
			m := engine.Move{From: from, To: to, Die: mv[2]}
			if s, err = engine.ApplyMove(s, m, id); err != nil {
				t.Fatalf("ApplyMove(%s): %v", m, err)
			}
		}
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	states := map[string]*engine.GameState{
		"new casual": engine.NewGame(engine.Casual, engine.Black, ids(), epoch),
		"new tapa":   engine.NewGame(engine.Tapa, engine.White, ids(), epoch),
		"mid game":   midGame(t),
	}
	for name, s := range states {
		t.Run(name, func(t *testing.T) {
			tok, err := Encode(s)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if strings.ContainsAny(tok, "+/=") {
				t.Errorf("token %q is not URL safe", tok)
			}
			got, err := Decode(tok)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, s) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, s)
			}
			again, _ := Encode(got)
			if again != tok {
				t.Error("re-encoding changed the token")
			}
		})
	}
}

func TestRoundTripKeepsCapture(t *testing.T) {
	s := midGame(t)
	if len(s.Board.Bar.White) != 1 {
		t.Fatalf("setup: white bar = %d, want 1", len(s.Board.Bar.White))
	}
	tok, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(tok)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Validate(got); err != nil {
		t.Errorf("decoded state invalid: %v", err)
	}
	if got.Dice.Rolled != s.Dice.Rolled || !reflect.DeepEqual(got.Dice.Consumed, s.Dice.Consumed) {
		t.Errorf("dice = %+v, want %+v", got.Dice, s.Dice)
	}
	if !reflect.DeepEqual(engine.LegalMoves(got), engine.LegalMoves(s)) {
		t.Error("decoded state offers different moves")
	}
}

// pack compresses and encodes an arbitrary payload the way Encode does.
func pack(t *testing.T, payload string) string {
	t.Helper()
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestCompression)
	w.Write([]byte(payload))
	w.Close()
	return base64.RawURLEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeErrors(t *testing.T) {
	points := strings.TrimSuffix(strings.Repeat("[],", 24), ",")
	valid := `{"variant":"casual","board":{"points":[` + points + `],"bar":{"WHITE":[],"BLACK":[]},"outside":{"WHITE":[],"BLACK":[]}},"turn":"WHITE","dice":{"values":[],"rolled":false,"consumed":[]},"history":[],"gameId":"g","timestamp":0,"score":{"WHITE":0,"BLACK":0}}`
	if _, err := Decode(pack(t, valid)); err != nil {
		t.Fatalf("baseline payload rejected: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrDecode},
		{"not base64", "not a token!", ErrDecode},
		{"not deflate", base64.RawURLEncoding.EncodeToString([]byte{0xff, 0xff, 0xff, 0xff}), ErrDecode},
		{"not json", pack(t, "hello"), ErrParse},
		{"wrong shape", pack(t, `[1,2,3]`), ErrParse},
		{"short board", pack(t, strings.Replace(valid, `[[],`, `[`, 1)), ErrParse},
		{"unknown variant", pack(t, strings.Replace(valid, `"casual"`, `"plakoto"`, 1)), ErrParse},
		{"unknown side", pack(t, strings.Replace(valid, `"turn":"WHITE"`, `"turn":"RED"`, 1)), ErrParse},
		{"values without roll", pack(t, strings.Replace(valid, `"values":[]`, `"values":[2,3]`, 1)), ErrParse},
		{"three dice", pack(t, strings.Replace(valid, `"values":[],"rolled":false`, `"values":[2,3,4],"rolled":true`, 1)), ErrParse},
		{"die seven", pack(t, strings.Replace(valid, `"values":[],"rolled":false`, `"values":[7,3],"rolled":true`, 1)), ErrParse},
		{"bad consumed", pack(t, strings.Replace(valid, `"values":[],"rolled":false,"consumed":[]`, `"values":[2,3],"rolled":true,"consumed":[5]`, 1)), ErrParse},
		{"piece without id", pack(t, strings.Replace(valid, `"bar":{"WHITE":[]`, `"bar":{"WHITE":[{"id":"","owner":"WHITE"}]`, 1)), ErrParse},
		{"piece without owner", pack(t, strings.Replace(valid, `"outside":{"WHITE":[]`, `"outside":{"WHITE":[{"id":"p1"}]`, 1)), ErrParse},
		{"point piece with null owner", pack(t, strings.Replace(valid, `[[],`, `[[{"id":"p1","owner":null}],`, 1)), ErrParse},
		{"missing game id", pack(t, strings.Replace(valid, `"gameId":"g"`, `"gameId":""`, 1)), ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeAllocatesNullContainers(t *testing.T) {
	points := strings.TrimSuffix(strings.Repeat("null,", 24), ",")
	payload := `{"variant":"tapa","board":{"points":[` + points + `]},"turn":"BLACK","gameId":"g"}`
	s, err := Decode(pack(t, payload))
	if err != nil {
		t.Fatal(err)
	}
	if s.Board.Points[0] == nil || s.Board.Bar.White == nil || s.Dice.Values == nil || s.History == nil {
		t.Error("null containers left nil")
	}
	if !errors.Is(engine.Validate(s), engine.ErrInvalidState) {
		t.Error("an empty board must still fail validation")
	}
}
