package engine

import (
	"encoding/json"
	"testing"
)

func TestNewGameCasualLayout(t *testing.T) {
	s := newCasual(t, White)

	want := map[Side]layout{
		White: {0: 2, 11: 5, 16: 3, 18: 5},
		Black: {23: 2, 12: 5, 7: 3, 5: 5},
	}
	for p, pt := range s.Board.Points {
		owner, ok := s.Board.Owner(p)
		if !ok {
			if want[White][p] != 0 || want[Black][p] != 0 {
				t.Errorf("point %d empty, want pieces", p)
			}
			continue
		}
		if got := len(pt); got != want[owner][p] {
			t.Errorf("point %d: %d %s pieces, want %d", p, got, owner, want[owner][p])
		}
	}
	for _, side := range []Side{White, Black} {
		if n := s.Board.Count(side); n != PiecesPerSide {
			t.Errorf("%s count = %d, want %d", side, n, PiecesPerSide)
		}
		if s.Board.OnBar(side) || s.Board.BorneOff(side) != 0 {
			t.Errorf("%s should start with empty bar and outside", side)
		}
		if pips := s.Board.PipCount(side); pips != 167 {
			t.Errorf("%s pip count = %d, want 167", side, pips)
		}
	}
	if s.Dice.Rolled || len(s.Dice.Values) != 0 {
		t.Errorf("new game dice = %+v, want unrolled", s.Dice)
	}
	if s.Turn != White || s.GameID == "" || s.Timestamp != epoch.UnixMilli() {
		t.Errorf("unexpected header: turn=%s id=%q ts=%d", s.Turn, s.GameID, s.Timestamp)
	}
	if err := Validate(s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewGameStackedVariants(t *testing.T) {
	for _, v := range []Variant{GulBara, Tapa} {
		t.Run(string(v), func(t *testing.T) {
			s := NewGame(v, Black, sequentialIDs("v"), epoch)
			if n := len(s.Board.Points[0]); n != 15 || s.Board.Points[0][0].Owner != White {
				t.Errorf("point 0 = %d pieces, want 15 White", n)
			}
			if n := len(s.Board.Points[23]); n != 15 || s.Board.Points[23][0].Owner != Black {
				t.Errorf("point 23 = %d pieces, want 15 Black", n)
			}
			if s.Variant != v {
				t.Errorf("variant = %s, want %s", s.Variant, v)
			}
			if err := Validate(s); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestBoardQueries(t *testing.T) {
	s := customState(White, layout{3: 1, 20: 2}, layout{4: 2, 10: 1}, 0, 1)
	b := &s.Board

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"black point blocks white", b.Blocked(4, White), true},
		{"own point never blocks", b.Blocked(20, White), false},
		{"single piece does not block", b.Blocked(10, White), false},
		{"white blot", b.IsBlot(3, White), true},
		{"black blot", b.IsBlot(10, Black), true},
		{"made point is not a blot", b.IsBlot(20, White), false},
		{"black on bar", b.OnBar(Black), true},
		{"white not on bar", b.OnBar(White), false},
		{"white outside home", b.CanBearOff(White), false},
		{"black on bar cannot bear off", b.CanBearOff(Black), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	home := customState(White, layout{18: 3, 23: 1}, layout{5: 4}, 0, 0)
	if !home.Board.CanBearOff(White) || !home.Board.CanBearOff(Black) {
		t.Error("both sides should be able to bear off")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := roll(t, newCasual(t, White), 3, 5)
	c := s.Clone()
	c.Board.Points[0] = c.Board.Points[0][:1]
	c.Dice.Consumed = append(c.Dice.Consumed, 0)
	c.Board.Bar.White = append(c.Board.Bar.White, Piece{ID: "x", Owner: White})

	if len(s.Board.Points[0]) != 2 || len(s.Dice.Consumed) != 0 || len(s.Board.Bar.White) != 0 {
		t.Error("mutating a clone changed the original")
	}
}

func TestLocationJSON(t *testing.T) {
	tests := []struct {
		loc  Location
		json string
	}{
		{PointLocation(0), `0`},
		{PointLocation(23), `23`},
		{BarLocation, `"bar"`},
		{OffLocation, `"off"`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.loc)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", tt.loc, err)
		}
		if string(data) != tt.json {
			t.Errorf("Marshal(%s) = %s, want %s", tt.loc, data, tt.json)
		}
		var back Location
		if err := json.Unmarshal(data, &back); err != nil || back != tt.loc {
			t.Errorf("Unmarshal(%s) = %v, %v", data, back, err)
		}
	}

	for _, bad := range []string{`24`, `-1`, `"middle"`, `1.5`, `"5"`, `"0"`} {
		var l Location
		if err := json.Unmarshal([]byte(bad), &l); err == nil {
			t.Errorf("Unmarshal(%s) should fail", bad)
		}
	}
}

func TestSideAndActionText(t *testing.T) {
	data, err := json.Marshal(struct {
		S Side   `json:"s"`
		A Action `json:"a"`
	}{Black, ActionReentry})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"s":"BLACK","a":"RECOVER"}` {
		t.Errorf("got %s", data)
	}

	var s Side
	if err := s.UnmarshalText([]byte("GREEN")); err == nil {
		t.Error("unknown side should fail")
	}
	var a Action
	if err := a.UnmarshalText([]byte("HIT")); err != nil || a != ActionCapture {
		t.Errorf("HIT = %v, %v", a, err)
	}
}
