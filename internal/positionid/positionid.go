// Package positionid encodes backgammon positions as the 14-character
// base64 position IDs used by GNU Backgammon.
//
// A Board counts checkers per point from each player's own perspective:
// index 0 is the player's ace point, 23 the far end and 24 the bar.
// Board[0] is the player not on roll and Board[1] the player on roll.
package positionid

import "errors"

const (
	// Length is the length of a position ID string.
	Length = 14
	// BarIndex is the bar slot in a Board row.
	BarIndex = 24
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// ErrInvalid is returned for a malformed or impossible position ID.
var ErrInvalid = errors.New("invalid position ID")

// Board is [player][point] checker counts.
type Board [2][25]uint8

// key is the 80-bit run-length form the ID is built from: for each player
// and slot, one 1-bit per checker followed by a 0-bit.
type key [10]uint8

func (k *key) setBits(pos, n uint32) {
	i := pos / 8
	b := ((uint32(1) << n) - 1) << (pos & 0x7)
	k[i] |= uint8(b)
	if i < 8 {
		k[i+1] |= uint8(b >> 8)
		k[i+2] |= uint8(b >> 16)
	} else if i == 8 {
		k[i+1] |= uint8(b >> 8)
	}
}

func makeKey(b Board) key {
	var k key
	var pos uint32
	for i := 0; i < 2; i++ {
		for j := 0; j < 25; j++ {
			if n := uint32(b[i][j]); n > 0 {
				k.setBits(pos, n)
				pos += n + 1
			} else {
				pos++
			}
		}
	}
	return k
}

func (k key) board() (Board, bool) {
	var b Board
	i, j := 0, 0
	for _, cur := range k {
		for bit := 0; bit < 8; bit++ {
			if cur&0x1 != 0 {
				if i >= 2 || j >= 25 {
					return b, false
				}
				b[i][j]++
			} else {
				j++
				if j == 25 {
					i++
					j = 0
				}
			}
			cur >>= 1
		}
	}
	return b, true
}

// Encode returns the position ID of b.
func Encode(b Board) string {
	k := makeKey(b)
	out := make([]byte, Length)
	p := k[:]
	for i := 0; i < 3; i++ {
		out[i*4] = alphabet[p[0]>>2]
		out[i*4+1] = alphabet[((p[0]&0x03)<<4)|(p[1]>>4)]
		out[i*4+2] = alphabet[((p[1]&0x0F)<<2)|(p[2]>>6)]
		out[i*4+3] = alphabet[p[2]&0x3F]
		p = p[3:]
	}
	out[12] = alphabet[p[0]>>2]
	out[13] = alphabet[(p[0]&0x03)<<4]
	return string(out)
}

func decodeChar(c byte) (uint8, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A', true
	case c >= 'a' && c <= 'z':
		return c - 'a' + 26, true
	case c >= '0' && c <= '9':
		return c - '0' + 52, true
	case c == '+':
		return 62, true
	case c == '/':
		return 63, true
	}
	return 0, false
}

// Decode parses a position ID back into a Board.
func Decode(id string) (Board, error) {
	if len(id) != Length {
		return Board{}, ErrInvalid
	}
	var ch [Length]uint8
	for i := 0; i < Length; i++ {
		v, ok := decodeChar(id[i])
		if !ok {
			return Board{}, ErrInvalid
		}
		ch[i] = v
	}

	var k key
	c := ch[:]
	for i := 0; i < 3; i++ {
		k[i*3] = (c[0] << 2) | (c[1] >> 4)
		k[i*3+1] = (c[1] << 4) | (c[2] >> 2)
		k[i*3+2] = (c[2] << 6) | c[3]
		c = c[4:]
	}
	k[9] = (c[0] << 2) | (c[1] >> 4)

	b, ok := k.board()
	if !ok || !Check(b) {
		return Board{}, ErrInvalid
	}
	return b, nil
}

// Check reports whether b could occur in a game: at most 15 checkers per
// player, no point shared by both players, and not both players stuck on
// the bar against closed boards.
func Check(b Board) bool {
	var total [2]int
	for i := 0; i < 25; i++ {
		total[0] += int(b[0][i])
		total[1] += int(b[1][i])
		if total[0] > 15 || total[1] > 15 {
			return false
		}
	}
	for i := 0; i < 24; i++ {
		if b[0][i] > 0 && b[1][23-i] > 0 {
			return false
		}
	}
	for i := 0; i < 6; i++ {
		if b[0][i] < 2 || b[1][i] < 2 {
			return true
		}
	}
	return b[0][BarIndex] == 0 || b[1][BarIndex] == 0
}
